package sensibo

import "time"

// FieldGroup selects which parts of a pod a Fetch returns
type FieldGroup string

const (
	GroupAcState      FieldGroup = "acState"
	GroupMeasurements FieldGroup = "measurements"
	GroupAll          FieldGroup = "*"
)

// Field is a single writable acState property
type Field string

const (
	FieldOn                Field = "on"
	FieldMode              Field = "mode"
	FieldTargetTemperature Field = "targetTemperature"
	FieldFanLevel          Field = "fanLevel"
	FieldSwing             Field = "swing"
	FieldHorizontalSwing   Field = "horizontalSwing"
)

const statusSuccess = "success"

// envelope is what every endpoint wraps its result in
type envelope[T any] struct {
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Result  T      `json:"result"`
}

type AcState struct {
	On                bool    `json:"on"`
	Mode              string  `json:"mode,omitempty"`
	TargetTemperature float64 `json:"targetTemperature,omitempty"`
	TemperatureUnit   string  `json:"temperatureUnit,omitempty"`
	FanLevel          string  `json:"fanLevel,omitempty"`
	Swing             string  `json:"swing,omitempty"`
	HorizontalSwing   string  `json:"horizontalSwing,omitempty"`
}

type Measurements struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Time        struct {
		SecondsAgo int       `json:"secondsAgo"`
		Time       time.Time `json:"time"`
	} `json:"time"`
}

type Room struct {
	UID  string `json:"uid,omitempty"`
	Name string `json:"name,omitempty"`
}

type Firmware struct {
	Version string `json:"firmwareVersion,omitempty"`
}

// Pod is the subset of a Sensibo pod this bridge understands; any group not
// requested in the Fetch is left nil
type Pod struct {
	ID              string        `json:"id,omitempty"`
	ProductModel    string        `json:"productModel,omitempty"`
	FirmwareVersion string        `json:"firmwareVersion,omitempty"`
	Room            *Room         `json:"room,omitempty"`
	AcState         *AcState      `json:"acState,omitempty"`
	Measurements    *Measurements `json:"measurements,omitempty"`
}

// ChangeResult is returned from PatchField and BulkUpdate
type ChangeResult struct {
	ID                string   `json:"id,omitempty"`
	Status            string   `json:"status,omitempty"`
	Reason            string   `json:"reason,omitempty"`
	FailureReason     string   `json:"failureReason,omitempty"`
	ChangedProperties []string `json:"changedProperties,omitempty"`
	AcState           *AcState `json:"acState,omitempty"`
}
