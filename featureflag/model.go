// featureflag/model.go
package featureflag

import (
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"

	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FlagContext identifies who is asking for a flag. On the wire the
// additional properties sit next to userID and organizationId.
type FlagContext struct {
	UserID               interface{}
	OrganizationID       int
	AdditionalProperties map[string]interface{}
}

func (c FlagContext) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.AdditionalProperties)+2)
	for k, v := range c.AdditionalProperties {
		out[k] = v
	}
	out["userID"] = c.UserID
	out["organizationId"] = c.OrganizationID
	return json.Marshal(out)
}

func (c *FlagContext) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = FlagContext{}
	if v, ok := raw["userID"]; ok {
		c.UserID = v
		delete(raw, "userID")
	}
	if v, ok := raw["organizationId"]; ok {
		f, isNum := v.(float64)
		if !isNum || f != math.Trunc(f) {
			return fmt.Errorf("%w: organizationId must be an integer, got %v", coregate_errors.ErrInvalidFlagContext, v)
		}
		c.OrganizationID = int(f)
		delete(raw, "organizationId")
	}
	if len(raw) > 0 {
		c.AdditionalProperties = raw
	}
	return nil
}

// Flag is the authority's verdict for a single flag.
type Flag struct {
	Name  string `json:"name"`
	Value *bool  `json:"value" validate:"required"`
}

// FlagRecord is the authority's `data` object. It is cached verbatim.
type FlagRecord struct {
	Flag            *Flag  `json:"flag" validate:"required"`
	LastFetchedTime string `json:"last_fetched_time"`
}

func (r FlagRecord) Name() string {
	if r.Flag == nil {
		return ""
	}
	return r.Flag.Name
}

func (r FlagRecord) Value() bool {
	return r.Flag != nil && r.Flag.Value != nil && *r.Flag.Value
}

type flagRequest struct {
	Context      FlagContext `json:"context"`
	FlagName     string      `json:"flag_name"`
	DefaultValue bool        `json:"default_value"`
}

type flagResponse struct {
	Data *FlagRecord `json:"data" validate:"required"`
}
