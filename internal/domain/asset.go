package domain

import (
	"fmt"
	"strings"
)

// AssetID identifies a native asset on the ledger by its minting policy id
// and hex-encoded token name. The empty pair is reserved for the chain's
// base unit (lovelace).
type AssetID struct {
	PolicyID string
	Name     string
}

// BaseAsset is the ledger's base unit.
var BaseAsset = AssetID{}

// IsBase reports whether the asset is the base unit.
func (a AssetID) IsBase() bool {
	return a.PolicyID == "" && a.Name == ""
}

func (a AssetID) String() string {
	if a.IsBase() {
		return "lovelace"
	}
	return a.PolicyID + "." + a.Name
}

// MarshalText lets AssetID act as a JSON map key ("policy.name", empty for
// the base unit).
func (a AssetID) MarshalText() ([]byte, error) {
	if a.IsBase() {
		return []byte(""), nil
	}
	return []byte(a.PolicyID + "." + a.Name), nil
}

// UnmarshalText is the inverse of MarshalText.
func (a *AssetID) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*a = BaseAsset
		return nil
	}
	policy, name, ok := strings.Cut(s, ".")
	if !ok {
		return fmt.Errorf("domain.AssetID: invalid asset key %q", s)
	}
	a.PolicyID = policy
	a.Name = name
	return nil
}
