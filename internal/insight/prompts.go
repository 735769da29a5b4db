package insight

const insightsPrompt = `Act as a nephrologist reviewing a chronic nephritis patient's records.
Latest vitals: %s
Meals logged: %s
Current medications: %s
Write a report with four sections: 1. kidney function assessment 2. complication risks 3. dietary advice 4. warning signs.`

const labReportPrompt = `You are a medical report parser. Extract these kidney indicators from the lab report and return JSON.
Fields: bloodPressureSys, bloodPressureDia, weight, urineProtein (negative, trace, 1+, 2+, 3+ or 4+), creatinine, uricAcid, eGFR, reportDate (YYYY-MM-DD).`

const prescriptionPrompt = `You are a pharmacist. Extract the medications from this prescription.
For each medication give the name, single dose and frequency (QD, BID, TID and so on).
For herbal prescriptions the name is the core formula and the dose is the total per packet.
For western prescriptions include the strength in the name.
Return JSON with prescriptionDate (YYYY-MM-DD), type (chinese or western) and medications.`

const dietPrompt = `As a renal dietitian, recommend three healthy dishes for a chronic nephritis patient today.
Favor low sodium, low phosphorus and moderate high-quality protein.
Return a JSON array with fields: name, reason, recipe, tags (array of strings).`

var labReportSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"bloodPressureSys": map[string]any{"type": "NUMBER"},
		"bloodPressureDia": map[string]any{"type": "NUMBER"},
		"weight":           map[string]any{"type": "NUMBER"},
		"urineProtein":     map[string]any{"type": "STRING"},
		"creatinine":       map[string]any{"type": "NUMBER"},
		"uricAcid":         map[string]any{"type": "NUMBER"},
		"eGFR":             map[string]any{"type": "NUMBER"},
		"reportDate":       map[string]any{"type": "STRING"},
	},
}

var prescriptionSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"prescriptionDate": map[string]any{"type": "STRING"},
		"type":             map[string]any{"type": "STRING"},
		"medications": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"name":      map[string]any{"type": "STRING"},
					"dosage":    map[string]any{"type": "STRING"},
					"frequency": map[string]any{"type": "STRING"},
				},
				"required": []string{"name", "dosage", "frequency"},
			},
		},
	},
}
