package v01

import (
	"context"
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// QuantumProgram is an ordered list of items sharing a shot count.
type QuantumProgram struct {
	Shots int    `json:"shots" validate:"min=1"`
	Items []Item `json:"items"`
}

// Validate re-runs the checks applied when the program was decoded.
func (p *QuantumProgram) Validate(ctx context.Context) error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return program.ValidateItems(ctx, len(p.Items), func(_ context.Context, i int) error {
		return p.Items[i].Validate()
	})
}

func (p *QuantumProgram) decode(ctx context.Context, b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var out QuantumProgram
	if _, err := validation.Field(raw, "shots", &out.Shots, true); err != nil {
		return err
	}
	if err := validation.Struct(&out); err != nil {
		return err
	}
	var items []json.RawMessage
	if _, err := validation.Field(raw, "items", &items, true); err != nil {
		return err
	}
	out.Items = make([]Item, len(items))
	err = program.ValidateItems(ctx, len(items), func(_ context.Context, i int) error {
		item, err := decodeItem(items[i])
		out.Items[i] = item
		return err
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *QuantumProgram) UnmarshalJSON(b []byte) error {
	return p.decode(context.Background(), b)
}

// MarshalJSON implements json.Marshaler.
func (p QuantumProgram) MarshalJSON() ([]byte, error) {
	type plain QuantumProgram
	if p.Items == nil {
		p.Items = []Item{}
	}
	return json.Marshal(plain(p))
}
