package generate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/arvernus/irock-sync/internal/registers"
)

// Names of the generated constants inside the driver source file
const (
	RegistersConstant     = "IROCK_MODBUS_REGISTERS"
	CellRegistersConstant = "IROCK_MODBUS_CELL_REGISTERS"
)

// RenderFile rewrites both register constants in the driver file
// wholesale. Tables are emitted newest version first and field entries
// address-ordered, so the output is deterministic for a given release set.
func RenderFile(content string, tables []registers.Table, cellTables []registers.CellTable) (string, error) {
	sortTables(tables)
	sortCellTables(cellTables)

	entries := make([]string, 0, len(tables))
	for _, t := range tables {
		entries = append(entries, RenderTableEntry(t))
	}

	cellEntries := make([]string, 0, len(cellTables))
	for _, t := range cellTables {
		cellEntries = append(cellEntries, RenderCellTableEntry(t))
	}

	content, err := ReplaceConstant(content, RegistersConstant, entries)
	if err != nil {
		return "", err
	}
	content, err = ReplaceConstant(content, CellRegistersConstant, cellEntries)
	if err != nil {
		return "", err
	}

	return content, nil
}

// ReplaceConstant swaps the whole list literal assigned to constantName
// with the given entries, one per line.
func ReplaceConstant(content string, constantName string, entries []string) (string, error) {
	pattern, err := regexp.Compile(`(?s)` + regexp.QuoteMeta(constantName) + ` = \[.*?\]`)
	if err != nil {
		return "", err
	}
	if !pattern.MatchString(content) {
		return "", fmt.Errorf("constant %s not found in target file", constantName)
	}

	var b strings.Builder
	b.WriteString(constantName + " = [\n")
	for _, entry := range entries {
		b.WriteString("    " + entry + ",\n")
	}
	b.WriteString("]")

	return pattern.ReplaceAllLiteralString(content, b.String()), nil
}

// RenderTableEntry renders one pack register table as a literal entry
func RenderTableEntry(t registers.Table) string {
	var b strings.Builder
	b.WriteString("{'version': Version('" + t.Version.String() + "'), 'register': {")

	keys := sortedFieldKeys(t.Registers)
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		f := t.Registers[key]
		b.WriteString(pyString(key) + ": " + renderField(f.Name, "address", f.Address, f.ArraySize, f.Type, f.Description, f.Unit, f.HardwareSupportRegister))
	}

	b.WriteString("}}")
	return b.String()
}

// RenderCellTableEntry renders one per-cell register table as a literal entry
func RenderCellTableEntry(t registers.CellTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "{'version': Version('%s'), 'offset': %d, 'length': %d, 'register': {",
		t.Version.String(), t.Offset, t.Length)

	keys := sortedCellFieldKeys(t.Registers)
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		f := t.Registers[key]
		b.WriteString(pyString(key) + ": " + renderField(f.Name, "offset", f.Offset, f.ArraySize, f.Type, f.Description, f.Unit, f.HardwareSupportRegister))
	}

	b.WriteString("}}")
	return b.String()
}

func renderField(name, positionKey string, position, arraySize int, typeName, description string, unit *string, hwSupport *int) string {
	var b strings.Builder
	b.WriteString("{'name': " + pyString(name))
	fmt.Fprintf(&b, ", '%s': %d", positionKey, position)
	fmt.Fprintf(&b, ", 'array_size': %d", arraySize)
	b.WriteString(", 'type': " + pyString(typeName))
	b.WriteString(", 'description': " + pyString(description))
	if unit != nil {
		b.WriteString(", 'unit': " + pyString(*unit))
	} else {
		b.WriteString(", 'unit': None")
	}
	if hwSupport != nil {
		fmt.Fprintf(&b, ", 'hardware_support_register': %d", *hwSupport)
	} else {
		b.WriteString(", 'hardware_support_register': None")
	}
	b.WriteString("}")
	return b.String()
}

// pyString renders a single-quoted python string literal
func pyString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func sortTables(tables []registers.Table) {
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Version.GreaterThan(tables[j].Version)
	})
}

func sortCellTables(tables []registers.CellTable) {
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Version.GreaterThan(tables[j].Version)
	})
}

func sortedFieldKeys(fields map[string]registers.Field) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := fields[keys[i]], fields[keys[j]]
		if a.Address != b.Address {
			return a.Address < b.Address
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortedCellFieldKeys(fields map[string]registers.CellField) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := fields[keys[i]], fields[keys[j]]
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		return keys[i] < keys[j]
	})
	return keys
}
