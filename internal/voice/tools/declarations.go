package tools

import (
	"fmt"
	"strings"
)

type ParamType string

const (
	TypeString ParamType = "string"
	TypeNumber ParamType = "number"
)

type Param struct {
	Type        ParamType
	Description string
}

// Declaration describe una función que el modelo puede invocar.
// Los adapters la traducen al schema del proveedor.
type Declaration struct {
	Name        string
	Description string
	Params      map[string]Param
	Required    []string
}

func Declarations() []Declaration {
	return []Declaration{
		{
			Name:        NameAddPatient,
			Description: "Register a new patient in the system. Use this when user wants to add a patient.",
			Params: map[string]Param{
				"name":      {TypeString, "Full name of the patient"},
				"age":       {TypeNumber, "Age of the patient in years"},
				"condition": {TypeString, "Medical condition or health issue of the patient"},
			},
			Required: []string{"name", "age", "condition"},
		},
		{
			Name:        NameAddMedicine,
			Description: "Add a medicine schedule for an existing patient. Use this when user wants to add medicine or medication.",
			Params: map[string]Param{
				"patientName":  {TypeString, "Name of the patient who needs this medicine"},
				"medicineName": {TypeString, "Name of the medicine or medication"},
				"dosage":       {TypeString, `Dosage amount (e.g., "2 tablets", "5ml", "1 pill")`},
				"schedule":     {TypeString, `Time to take medicine in 24-hour format HH:MM (e.g., "09:00", "14:30", "21:00")`},
				"stock":        {TypeNumber, "Number of doses/pills/tablets available in stock"},
			},
			Required: []string{"patientName", "medicineName", "dosage", "schedule", "stock"},
		},
		{
			Name:        NameSetReminder,
			Description: `Set a reminder or alert for a patient. Use this for tasks like "check blood pressure", "doctor appointment", etc.`,
			Params: map[string]Param{
				"patientName": {TypeString, "Name of the patient for this reminder"},
				"task":        {TypeString, `Description of the task or reminder (e.g., "Check blood pressure", "Take temperature")`},
				"time":        {TypeString, `Time for the reminder in 24-hour format HH:MM (e.g., "10:00", "15:30")`},
			},
			Required: []string{"patientName", "task", "time"},
		},
		{
			Name:        NameListStatus,
			Description: `Get a summary of all current patients in the system. Use when user asks "who are the patients" or "list patients".`,
			Params:      map[string]Param{},
		},
	}
}

type Language string

const (
	LangEnglish   Language = "en"
	LangMalayalam Language = "ml"
	LangHindi     Language = "hi"
	LangTamil     Language = "ta"
	LangKannada   Language = "kn"
)

var languageNames = map[Language][2]string{
	LangEnglish:   {"English", "English"},
	LangMalayalam: {"Malayalam", "മലയാളം"},
	LangHindi:     {"Hindi", "हिन्दी"},
	LangTamil:     {"Tamil", "தமிழ்"},
	LangKannada:   {"Kannada", "ಕನ್ನಡ"},
}

// ParseLanguage cae a inglés con códigos desconocidos.
func ParseLanguage(s string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := languageNames[l]; ok {
		return l
	}
	return LangEnglish
}

// VoiceFor: Zephyr para inglés, Puck para el resto.
func VoiceFor(lang Language) string {
	if lang == LangEnglish {
		return "Zephyr"
	}
	return "Puck"
}

// SystemPrompt arma la instrucción del asistente con el roster actual.
func SystemPrompt(lang Language, patients []Patient) string {
	names, ok := languageNames[lang]
	if !ok {
		names = languageNames[LangEnglish]
	}
	full, native := names[0], names[1]

	roster := "None yet"
	if len(patients) > 0 {
		parts := make([]string, 0, len(patients))
		for _, p := range patients {
			parts = append(parts, fmt.Sprintf("%s (age %d)", p.Name, p.Age))
		}
		roster = strings.Join(parts, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are Zaathi, an AI Caregiver Companion assistant.\n\n")
	fmt.Fprintf(&b, "LANGUAGE: You speak %s (%s). Respond naturally in %s.\n\n", full, native, full)
	fmt.Fprintf(&b, "CURRENT PATIENTS: %s\n\n", roster)
	b.WriteString("YOUR CAPABILITIES:\n")
	b.WriteString("1. Register new patients - Use addPatient function\n")
	b.WriteString("2. Add medicine schedules - Use addMedicine function\n")
	b.WriteString("3. Set reminders - Use setReminder function\n")
	b.WriteString("4. Check patient list - Use listStatus function\n\n")
	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("- When user asks to add a patient, ALWAYS call addPatient function\n")
	b.WriteString("- When user mentions medicine/medication/pills, ALWAYS call addMedicine function\n")
	b.WriteString("- When user asks for reminders/alerts, ALWAYS call setReminder function\n")
	fmt.Fprintf(&b, "- After calling a function, confirm what you did in %s\n", full)
	b.WriteString("- Ask for missing information if needed (like age, time, dosage)\n")
	b.WriteString("- Times are 24-hour HH:MM\n")
	b.WriteString("- Keep responses SHORT and CLEAR\n\n")
	b.WriteString("RESPOND IMMEDIATELY. BE HELPFUL. USE FUNCTIONS WHEN APPROPRIATE.")
	return b.String()
}
