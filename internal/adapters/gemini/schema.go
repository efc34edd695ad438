package gemini

import (
	"google.golang.org/genai"

	"caregiver-assistant/internal/voice/tools"
)

func toTool(decls []tools.Declaration) *genai.Tool {
	out := &genai.Tool{FunctionDeclarations: make([]*genai.FunctionDeclaration, 0, len(decls))}
	for _, d := range decls {
		props := make(map[string]*genai.Schema, len(d.Params))
		for name, p := range d.Params {
			props[name] = &genai.Schema{Type: toType(p.Type), Description: p.Description}
		}
		out.FunctionDeclarations = append(out.FunctionDeclarations, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   d.Required,
			},
		})
	}
	return out
}

func toType(t tools.ParamType) genai.Type {
	switch t {
	case tools.TypeNumber:
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}
