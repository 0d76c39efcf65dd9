package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/ledcostume/pkg/document"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatPattern Format = "pattern"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".json":
		return FormatPattern
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	if trimmed := strings.TrimSpace(string(data[:min(len(data), 64)])); strings.HasPrefix(trimmed, "{") {
		return FormatPattern
	}
	return FormatUnknown
}

// ConvertFile converts a pattern document to MIDI or back, picking the
// direction from the file names
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	var outputData []byte
	switch {
	case inputFormat == FormatPattern && outputFormat == FormatMIDI:
		outputData, err = c.PatternToMIDI(data)
	case inputFormat == FormatMIDI && outputFormat == FormatPattern:
		outputData, err = c.MIDIToPattern(data)
	default:
		return fmt.Errorf("unsupported conversion: %s to %s", inputFormat, outputFormat)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// PatternToMIDI converts a pattern document to a MIDI file
func (c *Converter) PatternToMIDI(data []byte) ([]byte, error) {
	doc, err := document.DecodePattern(data)
	if err != nil {
		return nil, err
	}
	return c.ExportMIDI(doc.Pattern, 0)
}

// MIDIToPattern converts a MIDI file to a pattern document with no music
func (c *Converter) MIDIToPattern(data []byte) ([]byte, error) {
	p, err := c.ImportMIDI(data)
	if err != nil {
		return nil, err
	}
	return document.EncodePattern(&document.PatternDocument{Pattern: p})
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"pattern -> midi",
		"midi -> pattern",
	}
}
