// Package audio probes audio track metadata and plays tracks through the speaker
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// MetadataError reports a track whose duration could not be determined
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("failed to read audio metadata for %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// Decode opens an mp3 or wav file
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		stream, format, err := mp3.Decode(file)
		if err != nil {
			file.Close()
			return nil, beep.Format{}, err
		}
		return stream, format, nil
	case ".wav":
		stream, format, err := wav.Decode(file)
		if err != nil {
			file.Close()
			return nil, beep.Format{}, err
		}
		return stream, format, nil
	default:
		file.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", ext)
	}
}

// Duration returns the length of the track at path
func Duration(path string) (timeline.Milliseconds, error) {
	stream, format, err := Decode(path)
	if err != nil {
		return 0, &MetadataError{Path: path, Err: err}
	}
	defer stream.Close()

	n := stream.Len()
	if n <= 0 {
		return 0, &MetadataError{Path: path, Err: fmt.Errorf("stream has no samples")}
	}
	return timeline.Milliseconds(format.SampleRate.D(n).Milliseconds()), nil
}
