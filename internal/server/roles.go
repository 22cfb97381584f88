package server

// roleLabels maps the short relationship codes the frontend sends to the
// display labels embedded in prompts and stored records.
var roleLabels = map[string]string{
	"pareja":   "Pareja actual",
	"esposo":   "Esposo/a",
	"amigo":    "Amigo/a",
	"familiar": "Familiar",
	"crush":    "Crush / Casi algo",
	"ex":       "Ex-pareja",
}

// roleLabel resolves a role code to its display label. Unknown codes pass
// through unchanged so the prompts still read naturally.
func roleLabel(code string) string {
	if label, ok := roleLabels[code]; ok {
		return label
	}
	return code
}
