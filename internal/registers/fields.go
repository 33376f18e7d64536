package registers

// FieldNames maps upstream register keys to the driver's local field names
var FieldNames = map[string]string{
	"Manufacturer_ID":              "manufacturer_id",
	"Modbus_Version":               "modbus_version",
	"Hardware_Name":                "hardware_name",
	"Hardware_Version":             "hardware_version",
	"Serial_Number":                "serial_number",
	"SW_Version":                   "sw_version",
	"Number_of_Cells":              "cell_count",
	"Capacity":                     "capacity",
	"Battery_Voltage":              "voltage",
	"Battery_Current":              "current",
	"Battery_SOC":                  "soc",
	"Remaining_Capacity":           "remaining_capacity",
	"Max_Charge_Current":           "max_battery_charge_current",
	"Max_Discharge_Current":        "max_battery_discharge_current",
	"Max_Cell_Voltage":             "max_battery_voltage_bms",
	"Min_Cell_Voltage":             "min_battery_voltage_bms",
	"Temperature_Sensor_1":         "temp1",
	"Temperature_Sensor_2":         "temp2",
	"Temperature_Sensor_3":         "temp3",
	"Temperature_Sensor_4":         "temp4",
	"MOSFET_Temperature":           "temp_mos",
	"Feedback_Shunt_Current":       "feedback_shunt_current",
	"Charge_FET":                   "charge_fet",
	"Discharge_FET":                "discharge_fet",
	"Low_Voltage_Alarm":            "low_voltage_alarm",
	"High_Voltage_Alarm":           "high_voltage_alarm",
	"Low_Cell_Voltage_Alarm":       "low_cell_voltage_alarm",
	"High_Cell_Voltage_Alarm":      "high_cell_voltage_alarm",
	"Low_SOC_Alarm":                "low_soc_alarm",
	"High_Charge_Current_Alarm":    "high_charge_current_alarm",
	"High_Discharge_Current_Alarm": "high_discharge_current_alarm",
	"Temperature_Alarm":            "temperature_alarm",
	"Alarm":                        "alarm",
	"Warning":                      "warning",
	"Cell_Voltage":                 "voltage",
	"Cell_Balance_Status":          "balance",
	"Production":                   "production",
	"Custom_Field":                 "custom_field",
	"SOH":                          "soh",
	"Balance_FET":                  "balance_fet",
}

// KnownField reports whether an upstream register key has a local mapping
func KnownField(key string) bool {
	_, ok := FieldNames[key]
	return ok
}
