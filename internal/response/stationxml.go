package response

// FDSN StationXML types for the parts of an inventory used for response removal and station positions.

type FDSNStationXML struct {
	SchemaVersion float64       `xml:"schemaVersion,attr"`
	Source        string        `xml:"Source"`
	Sender        string        `xml:"Sender,omitempty"`
	Network       []NetworkType `xml:"Network"`
}

type NetworkType struct {
	Code    string        `xml:"code,attr"`
	Station []StationType `xml:"Station,omitempty"`
}

type StationType struct {
	Code      string        `xml:"code,attr"`
	Latitude  FloatType     `xml:"Latitude"`
	Longitude FloatType     `xml:"Longitude"`
	Elevation FloatType     `xml:"Elevation"`
	Channel   []ChannelType `xml:"Channel,omitempty"`
}

// Equivalent to SEED blockette 52 and parent element for the related the
// response blockettes.
type ChannelType struct {
	Code         string        `xml:"code,attr"`
	LocationCode string        `xml:"locationCode,attr"`
	SampleRate   *FloatType    `xml:"SampleRate,omitempty"`
	Response     *ResponseType `xml:"Response,omitempty"`
}

type ResponseType struct {
	InstrumentSensitivity *SensitivityType    `xml:"InstrumentSensitivity,omitempty"`
	Stage                 []ResponseStageType `xml:"Stage,omitempty"`
}

type ResponseStageType struct {
	Number     *int            `xml:"number,attr,omitempty"`
	PolesZeros *PolesZerosType `xml:"PolesZeros,omitempty"`
	StageGain  *GainType       `xml:"StageGain,omitempty"`
}

// Response: complex poles and zeros. Corresponds to SEED blockette
// 53.
type PolesZerosType struct {
	InputUnits             *UnitsType     `xml:"InputUnits,omitempty"`
	OutputUnits            *UnitsType     `xml:"OutputUnits,omitempty"`
	PzTransferFunctionType string         `xml:"PzTransferFunctionType,omitempty"`
	NormalizationFactor    *float64       `xml:"NormalizationFactor,omitempty"`
	NormalizationFrequency *FloatType     `xml:"NormalizationFrequency,omitempty"`
	Zero                   []PoleZeroType `xml:"Zero,omitempty"`
	Pole                   []PoleZeroType `xml:"Pole,omitempty"`
}

type PoleZeroType struct {
	Number    *int      `xml:"number,attr,omitempty"`
	Real      FloatType `xml:"Real"`
	Imaginary FloatType `xml:"Imaginary"`
}

type GainType struct {
	Value     float64  `xml:"Value,omitempty"`
	Frequency *float64 `xml:"Frequency,omitempty"`
}

// Sensitivity and frequency ranges.
type SensitivityType struct {
	GainType
	InputUnits  *UnitsType `xml:"InputUnits,omitempty"`
	OutputUnits *UnitsType `xml:"OutputUnits,omitempty"`
}

type FloatType struct {
	Value float64 `xml:",chardata"`
	Unit  string  `xml:"unit,attr,omitempty"`
}

type UnitsType struct {
	Name        string `xml:"Name,omitempty"`
	Description string `xml:"Description,omitempty"`
}

// PzTransferFunctionType values.
const (
	LaplaceRadians = "LAPLACE (RADIANS/SECOND)"
	LaplaceHertz   = "LAPLACE (HERTZ)"
	Digital        = "DIGITAL (Z-TRANSFORM)"
)
