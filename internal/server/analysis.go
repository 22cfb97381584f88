package server

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// errMalformedAnalysis marks model output that is not a JSON object even after
// fence stripping. Handlers map it to a generic retry message.
var errMalformedAnalysis = errors.New("analysis response is not valid JSON")

// AnalysisResult is the canonical shape of one message analysis. The model is
// asked for exactly these five fields but is not guaranteed to comply, so the
// type tolerates partial objects: unknown keys survive a round trip and
// missing known keys come back as their zero defaults.
type AnalysisResult struct {
	Contexto             string
	Flags                []string
	AbusoDetectado       bool
	RecomendacionFinal   string
	SugerenciasRespuesta []string
	Extra                map[string]json.RawMessage
}

func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("expected a JSON object")
	}

	*a = AnalysisResult{
		Flags:                []string{},
		SugerenciasRespuesta: []string{},
	}
	for key, raw := range fields {
		// A known key whose value does not decode into its documented type is
		// treated the same as a missing key and keeps its default.
		switch key {
		case "contexto":
			_ = json.Unmarshal(raw, &a.Contexto)
		case "flags":
			_ = json.Unmarshal(raw, &a.Flags)
		case "abuso_detectado":
			_ = json.Unmarshal(raw, &a.AbusoDetectado)
		case "recomendacion_final":
			_ = json.Unmarshal(raw, &a.RecomendacionFinal)
		case "sugerencias_respuesta":
			_ = json.Unmarshal(raw, &a.SugerenciasRespuesta)
		default:
			if a.Extra == nil {
				a.Extra = map[string]json.RawMessage{}
			}
			a.Extra[key] = raw
		}
	}
	if a.Flags == nil {
		a.Flags = []string{}
	}
	if a.SugerenciasRespuesta == nil {
		a.SugerenciasRespuesta = []string{}
	}
	return nil
}

func (a AnalysisResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+5)
	for key, raw := range a.Extra {
		out[key] = raw
	}
	flags := a.Flags
	if flags == nil {
		flags = []string{}
	}
	suggestions := a.SugerenciasRespuesta
	if suggestions == nil {
		suggestions = []string{}
	}
	out["contexto"] = a.Contexto
	out["flags"] = flags
	out["abuso_detectado"] = a.AbusoDetectado
	out["recomendacion_final"] = a.RecomendacionFinal
	out["sugerencias_respuesta"] = suggestions
	return json.Marshal(out)
}

var codeFencePattern = regexp.MustCompile("```(?:json)?")

// normalizeAnalysis parses raw model output into an AnalysisResult. Models
// occasionally wrap the JSON in a markdown code fence despite instructions,
// so fences are stripped before parsing.
func normalizeAnalysis(raw string) (AnalysisResult, error) {
	cleaned := strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))

	var result AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return AnalysisResult{}, errMalformedAnalysis
	}
	return result, nil
}
