package registers

import (
	"fmt"
	"log"

	"github.com/Masterminds/semver/v3"
	"github.com/ghodss/yaml"
	validator "gopkg.in/go-playground/validator.v9"
)

// dataFile mirrors the data.yaml shipped inside an upstream release zipball
type dataFile struct {
	Version       string           `json:"version" validate:"required"`
	Registers     map[string]Field `json:"registers" validate:"required,dive"`
	CellRegisters cellBlock        `json:"cell_registers"`
}

type cellBlock struct {
	Offset    int                  `json:"offset" validate:"min=0"`
	Length    int                  `json:"length" validate:"min=0"`
	Registers map[string]CellField `json:"registers" validate:"dive"`
}

// Parse validates a data.yaml payload and produces the pack table and
// the per-cell table for that protocol version.
func Parse(data []byte) (*Table, *CellTable, error) {
	var df dataFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(df); err != nil {
		return nil, nil, fmt.Errorf("data file failed validation: %w", err)
	}

	version, err := semver.NewVersion(df.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid version %q: %w", df.Version, err)
	}
	if version.Major() == 0 {
		return nil, nil, fmt.Errorf("protocol version 0.x.x not supported")
	}

	for key, field := range df.Registers {
		if err := checkField(key, field.Type, field.ArraySize); err != nil {
			return nil, nil, err
		}
	}

	table := &Table{
		Version:   version,
		Registers: df.Registers,
	}

	if len(df.CellRegisters.Registers) == 0 {
		return table, nil, nil
	}

	if df.CellRegisters.Length < 1 {
		return nil, nil, fmt.Errorf("cell block length must be at least 1")
	}
	for key, field := range df.CellRegisters.Registers {
		if err := checkField(key, field.Type, field.ArraySize); err != nil {
			return nil, nil, err
		}
		if field.Offset >= df.CellRegisters.Length {
			return nil, nil, fmt.Errorf("cell register %s offset %d exceeds block length %d",
				key, field.Offset, df.CellRegisters.Length)
		}
	}

	cellTable := &CellTable{
		Version:   version,
		Offset:    df.CellRegisters.Offset,
		Length:    df.CellRegisters.Length,
		Registers: df.CellRegisters.Registers,
	}

	return table, cellTable, nil
}

func checkField(key, typeName string, arraySize int) error {
	baseType, err := ParseBaseType(typeName)
	if err != nil {
		return fmt.Errorf("register %s: %w", key, err)
	}
	// Two chars per 16-bit register, so char arrays must be even
	if baseType == TypeChar && arraySize%2 != 0 {
		return fmt.Errorf("register %s: char array size %d must be even", key, arraySize)
	}
	if !KnownField(key) {
		log.Printf("register %s has no local field mapping, keeping it anyway\n", key)
	}
	return nil
}
