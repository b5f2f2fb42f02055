package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// csvName returns the header name of a struct field, or "" when the field
// is excluded with `csv:"-"`.
func csvName(field reflect.StructField) string {
	csvTag := field.Tag.Get("csv")
	if csvTag == "-" || !field.IsExported() {
		return ""
	}
	// If the csv tag is present, use it as the header name, otherwise use the field name.
	if csvTag != "" {
		return csvTag
	}
	return field.Name
}

// StructToCsvHeader takes a struct type and returns a slice of strings representing the CSV header.
// It uses the `csv` tag on struct fields to determine the header name.
// If a field doesn't have a `csv` tag, the field name is used.
func StructToCsvHeader(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		if name := csvName(t.Field(i)); name != "" {
			headers = append(headers, name)
		}
	}
	return headers
}

// WriteToCsvFile writes the given headers and data to a CSV file at the specified filePath.
// For slices, it joins the elements using a semicolon (;) to handle multi-value fields.
func WriteToCsvFile[T any](filePath string, headers []string, data []T) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Write the headers
	if err := writer.Write(headers); err != nil {
		return err
	}

	// Write the data rows
	for _, item := range data {
		row, err := csvRow(headers, reflect.ValueOf(item))
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func csvRow(headers []string, v reflect.Value) ([]string, error) {
	// If item is a pointer, get the value it points to
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("data must be a slice of structs")
	}

	row := make([]string, len(headers))
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		idx := indexOf(headers, csvName(t.Field(i)))
		if idx < 0 {
			continue // Skip fields not in the headers
		}
		row[idx] = csvValue(v.Field(i))
	}
	return row, nil
}

// csvValue converts a field value to its CSV text.
func csvValue(fieldValue reflect.Value) string {
	switch fieldValue.Kind() {
	case reflect.Interface, reflect.Ptr:
		if fieldValue.IsNil() {
			return ""
		}
	case reflect.Slice:
		// Join slice elements with semicolon
		var sliceValues []string
		for j := 0; j < fieldValue.Len(); j++ {
			sliceValues = append(sliceValues, fmt.Sprintf("%v", fieldValue.Index(j).Interface()))
		}
		return strings.Join(sliceValues, ";")
	}
	return fmt.Sprintf("%v", fieldValue.Interface())
}

// indexOf returns the index of a string in a slice or -1 if not found
func indexOf(slice []string, item string) int {
	if item == "" {
		return -1
	}
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}
