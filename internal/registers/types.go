package registers

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// BaseType is a Modbus value type as named in the upstream data file
type BaseType string

const (
	TypeInt8    BaseType = "int8"
	TypeUint8   BaseType = "uint8"
	TypeChar    BaseType = "char"
	TypeInt16   BaseType = "int16"
	TypeUint16  BaseType = "uint16"
	TypeInt32   BaseType = "int32"
	TypeUint32  BaseType = "uint32"
	TypeInt64   BaseType = "int64"
	TypeUint64  BaseType = "uint64"
	TypeFloat32 BaseType = "float32"
	TypeFloat64 BaseType = "float64"
	TypeBool    BaseType = "bool"
)

var baseTypes = map[BaseType]bool{
	TypeInt8:    true,
	TypeUint8:   true,
	TypeChar:    true,
	TypeInt16:   true,
	TypeUint16:  true,
	TypeInt32:   true,
	TypeUint32:  true,
	TypeInt64:   true,
	TypeUint64:  true,
	TypeFloat32: true,
	TypeFloat64: true,
	TypeBool:    true,
}

// ParseBaseType validates a type string from the data file
func ParseBaseType(s string) (BaseType, error) {
	t := BaseType(s)
	if !baseTypes[t] {
		return "", fmt.Errorf("unknown base type %q", s)
	}
	return t, nil
}

// Field describes one register of the battery pack table
type Field struct {
	Name                    string  `json:"name" validate:"required"`
	Address                 int     `json:"address" validate:"min=0"`
	ArraySize               int     `json:"array_size" validate:"required,min=1"`
	Type                    string  `json:"type" validate:"required"`
	Description             string  `json:"description"`
	Unit                    *string `json:"unit"`
	HardwareSupportRegister *int    `json:"hardware_support_register"`
}

// CellField describes one register of the per-cell block.
// Its offset is relative to the cell block, not an absolute address.
type CellField struct {
	Name                    string  `json:"name" validate:"required"`
	Offset                  int     `json:"offset" validate:"min=0"`
	ArraySize               int     `json:"array_size" validate:"required,min=1"`
	Type                    string  `json:"type" validate:"required"`
	Description             string  `json:"description"`
	Unit                    *string `json:"unit"`
	HardwareSupportRegister *int    `json:"hardware_support_register"`
}

// Table is the pack register table of one protocol version
type Table struct {
	Version   *semver.Version
	Registers map[string]Field
}

// CellTable is the per-cell register table of one protocol version.
// Cell n starts at Offset + Length*(n-1).
type CellTable struct {
	Version   *semver.Version
	Offset    int
	Length    int
	Registers map[string]CellField
}
