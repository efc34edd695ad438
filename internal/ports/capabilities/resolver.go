package capabilities

import "context"

// Feature que habilita el asistente de voz en vivo.
const FeatureAssistantVoice = "assistant:voice"

type CapabilityCheck struct {
	UserID  string
	Feature string
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
