package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPartCategory is used when a request names no category.
const DefaultPartCategory = "Прочее"

// PartsRequest is a saved note of a part the owner wants to buy. The
// vehicle fields are copied from the profile when the request is made.
type PartsRequest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Note      string    `json:"note"`
	VIN       string    `json:"vin"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"ts"`
}

// PartsRequests is ordered newest first.
type PartsRequests []PartsRequest

// DecodePartsRequests reads the stored list, skipping entries without a
// name. Numeric ids are kept as text.
func DecodePartsRequests(raw []byte) PartsRequests {
	var entries []interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return PartsRequests{}
	}
	out := make(PartsRequests, 0, len(entries))
	for pos, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		req := PartsRequest{
			ID:       textField(m, "id", ""),
			Name:     strings.TrimSpace(textField(m, "name", "")),
			Category: textField(m, "category", ""),
			Note:     textField(m, "note", ""),
			VIN:      strings.ToUpper(textField(m, "vin", "")),
			Brand:    textField(m, "brand", ""),
			Model:    textField(m, "model", ""),
		}
		if req.Name == "" {
			continue
		}
		if req.Category == "" {
			req.Category = DefaultPartCategory
		}
		if ts, err := time.Parse(time.RFC3339Nano, textField(m, "ts", "")); err == nil {
			req.CreatedAt = ts
		}
		if req.ID == "" {
			req.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("part/%d/%s", pos, req.Name))).String()
		}
		out = append(out, req)
	}
	return out
}

// Encode serializes the list for storage.
func (p PartsRequests) Encode() ([]byte, error) {
	if p == nil {
		p = PartsRequests{}
	}
	return json.Marshal([]PartsRequest(p))
}

// Without returns a copy with the request id removed and whether it was
// present.
func (p PartsRequests) Without(id string) (PartsRequests, bool) {
	out := make(PartsRequests, 0, len(p))
	found := false
	for _, r := range p {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	return out, found
}
