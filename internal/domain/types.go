package domain

// Gender is the self-reported gender on a user profile.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// CKDStage is the chronic kidney disease stage on a user profile.
type CKDStage string

const (
	Stage1       CKDStage = "1"
	Stage2       CKDStage = "2"
	Stage3a      CKDStage = "3a"
	Stage3b      CKDStage = "3b"
	Stage4       CKDStage = "4"
	Stage5       CKDStage = "5"
	StageUnknown CKDStage = "unknown"
)

// UrineProtein is the qualitative dipstick result.
type UrineProtein string

const (
	ProteinNegative UrineProtein = "negative"
	ProteinTrace    UrineProtein = "trace"
	Protein1Plus    UrineProtein = "1+"
	Protein2Plus    UrineProtein = "2+"
	Protein3Plus    UrineProtein = "3+"
	Protein4Plus    UrineProtein = "4+"
)

// PrescriptionType classifies a prescription as herbal, western or combined.
type PrescriptionType string

const (
	PrescriptionHerbal     PrescriptionType = "chinese"
	PrescriptionWestern    PrescriptionType = "western"
	PrescriptionIntegrated PrescriptionType = "integrated"
)

// User is a registered person. Email is the registry key.
type User struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Password            string   `json:"password,omitempty"` // Collected, never verified
	DiagnosedDate       string   `json:"diagnosedDate,omitempty"`
	Age                 *int     `json:"age,omitempty"`
	Gender              Gender   `json:"gender,omitempty"`
	CKDStage            CKDStage `json:"ckdStage,omitempty"`
	TargetBloodPressure string   `json:"targetBloodPressure,omitempty"`
	BaselineWeight      *float64 `json:"baselineWeight,omitempty"`
}

// VitalRecord is an immutable clinical measurement snapshot.
type VitalRecord struct {
	ID               string       `json:"id"`
	Timestamp        string       `json:"timestamp"` // RFC 3339
	BloodPressureSys float64      `json:"bloodPressureSys"`
	BloodPressureDia float64      `json:"bloodPressureDia"`
	Weight           float64      `json:"weight"`
	UrineProtein     UrineProtein `json:"urineProtein"`
	EdemaLevel       int          `json:"edemaLevel"` // 0..3
	Creatinine       *float64     `json:"creatinine,omitempty"`
	UricAcid         *float64     `json:"uricAcid,omitempty"`
	EGFR             *float64     `json:"eGFR,omitempty"`
	Symptoms         []string     `json:"symptoms,omitempty"`
}

// Medication is an active medication with its reminder times.
type Medication struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Dosage               string   `json:"dosage"`
	Frequency            string   `json:"frequency"`
	Reminders            []string `json:"reminders"` // "HH:MM", 24-hour
	LastTaken            string   `json:"lastTaken,omitempty"`
	SourcePrescriptionID string   `json:"sourcePrescriptionId,omitempty"`
}

// HasReminder reports whether minute ("HH:MM") is one of the reminder times.
// Comparison is exact string equality.
func (m Medication) HasReminder(minute string) bool {
	for _, r := range m.Reminders {
		if r == minute {
			return true
		}
	}
	return false
}

// Meal is a logged meal with nutrient totals.
type Meal struct {
	ID          string  `json:"id"`
	Timestamp   string  `json:"timestamp"` // RFC 3339
	Description string  `json:"description"`
	ProteinG    float64 `json:"proteinG"`
	SodiumMg    float64 `json:"sodiumMg"`
	PotassiumMg float64 `json:"potassiumMg"`
	Calories    float64 `json:"calories"`
}

// Prescription is an archived prescription document.
// ExtractedMeds are copies; the active medication list does not reference them.
type Prescription struct {
	ID            string           `json:"id"`
	Date          string           `json:"date"`
	Type          PrescriptionType `json:"type"`
	FileName      string           `json:"fileName"`
	FileData      string           `json:"fileData"` // base64 payload
	MimeType      string           `json:"mimeType"`
	ExtractedMeds []Medication     `json:"extractedMeds"`
	Note          string           `json:"note,omitempty"`
}
