package models

import "encoding/json"

// VehicleProfile is the single vehicle tracked on this device.
// OdometerKm keeps the digits exactly as saved; an empty string means the
// reading was never entered.
type VehicleProfile struct {
	Brand            string `json:"brand"`
	Model            string `json:"model"`
	Year             string `json:"year"`
	Plate            string `json:"plate"`
	VIN              string `json:"vin"`
	OdometerKm       string `json:"odometerKm"`
	DocumentPhotoRef string `json:"documentPhotoRef,omitempty"`
}

// DecodeProfile reads a stored profile record. Corrupt input yields an empty profile.
// Records written by the first release use mileage and techpassUri.
func DecodeProfile(raw []byte) VehicleProfile {
	m := decodeObject(raw)
	return VehicleProfile{
		Brand:            textField(m, "brand", ""),
		Model:            textField(m, "model", ""),
		Year:             textField(m, "year", ""),
		Plate:            textField(m, "plate", ""),
		VIN:              textField(m, "vin", ""),
		OdometerKm:       textField(m, "odometerKm", textField(m, "mileage", "")),
		DocumentPhotoRef: textField(m, "documentPhotoRef", textField(m, "techpassUri", "")),
	}
}

// Encode serializes the profile for storage.
func (p VehicleProfile) Encode() ([]byte, error) {
	return json.Marshal(p)
}
