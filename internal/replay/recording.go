package replay

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Save writes r to w in a flat little-endian binary format: seed (8 bytes),
// module count (4 bytes), then each module as a length-prefixed byte
// string, followed by the fixed-width config fields.
func (r Recording) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, r.Seed); err != nil {
		return fmt.Errorf("write seed: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.Modules))); err != nil {
		return fmt.Errorf("write module count: %w", err)
	}
	for i, mod := range r.Modules {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(mod))); err != nil {
			return fmt.Errorf("write module %d length: %w", i, err)
		}
		if _, err := w.Write(mod); err != nil {
			return fmt.Errorf("write module %d bytes: %w", i, err)
		}
	}

	fields := []interface{}{
		r.Config.MaxTurns,
		r.Config.FuelBudget,
		r.Config.MapWidth,
		r.Config.MapHeight,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("write config field: %w", err)
		}
	}
	return nil
}

// LoadRecording reads a Recording back from r in the format written by Save.
func LoadRecording(r io.Reader) (Recording, error) {
	var rec Recording

	if err := binary.Read(r, binary.LittleEndian, &rec.Seed); err != nil {
		return Recording{}, fmt.Errorf("read seed: %w", err)
	}

	var numModules uint32
	if err := binary.Read(r, binary.LittleEndian, &numModules); err != nil {
		return Recording{}, fmt.Errorf("read module count: %w", err)
	}

	rec.Modules = make([][]byte, numModules)
	for i := range rec.Modules {
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return Recording{}, fmt.Errorf("read module %d length: %w", i, err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Recording{}, fmt.Errorf("read module %d bytes: %w", i, err)
		}
		rec.Modules[i] = buf
	}

	if err := binary.Read(r, binary.LittleEndian, &rec.Config.MaxTurns); err != nil {
		return Recording{}, fmt.Errorf("read max_turns: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Config.FuelBudget); err != nil {
		return Recording{}, fmt.Errorf("read fuel_budget: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Config.MapWidth); err != nil {
		return Recording{}, fmt.Errorf("read map_width: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Config.MapHeight); err != nil {
		return Recording{}, fmt.Errorf("read map_height: %w", err)
	}

	// Configuration extensions are appended in versioned fashion; this
	// reader understands none, so trailing bytes mean a newer format and
	// must be rejected rather than silently ignored.
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return Recording{}, fmt.Errorf("unrecognized recording version: trailing data after config")
	}

	return rec, nil
}
