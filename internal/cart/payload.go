package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// PayloadVersion is written with every stored cart.
const PayloadVersion = 1

var errUnsupportedVersion = errors.New("unsupported cart payload version")

// payload is the stored form of a cart. Stamp is unique per write so a
// reader can tell its snapshot apart from another writer's even when both
// happen to share a revision number.
type payload struct {
	Version  int    `json:"version"`
	Revision int64  `json:"revision"`
	Stamp    string `json:"stamp,omitempty"`
	Items    []Item `json:"items"`
}

func encodePayload(p payload) ([]byte, error) {
	if p.Items == nil {
		p.Items = []Item{}
	}
	p.Version = PayloadVersion
	return json.Marshal(p)
}

// decodePayload accepts the versioned envelope and the bare JSON array older
// clients stored (read as version 0).
func decodePayload(raw []byte) (payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return payload{Version: PayloadVersion}, nil
	}
	if trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return payload{}, fmt.Errorf("decode legacy cart: %w", err)
		}
		return payload{Version: 0, Items: items}, nil
	}

	var p payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return payload{}, fmt.Errorf("decode cart: %w", err)
	}
	if p.Version > PayloadVersion || p.Version < 0 {
		return payload{}, fmt.Errorf("%w: %d", errUnsupportedVersion, p.Version)
	}
	return p, nil
}

// normalize merges duplicate keys, drops non-positive quantities and invalid
// identities, and caps quantities at maxQty. Order of first appearance wins.
func normalize(items []Item, maxQty int) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[Key]int, len(items))
	for _, item := range items {
		if item.ProductID <= 0 || item.VariantID <= 0 || item.Quantity < 1 {
			continue
		}
		if pos, ok := index[item.Key()]; ok {
			out[pos].Quantity = capQuantity(out[pos].Quantity+item.Quantity, maxQty)
			continue
		}
		item = item.clone()
		item.Quantity = capQuantity(item.Quantity, maxQty)
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}

func capQuantity(qty, maxQty int) int {
	if maxQty > 0 && qty > maxQty {
		return maxQty
	}
	return qty
}
