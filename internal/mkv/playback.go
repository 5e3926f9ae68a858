package mkv

import (
	"fmt"
	"io"
	"os"

	"github.com/at-wat/ebml-go"
)

// Playback is a sequential reader over a recorded capture container. Open
// decodes the container once; Next then yields one composite Frame per
// recorded capture until io.EOF. Playback is not safe for concurrent use --
// exactly one goroutine drives Next.
type Playback struct {
	path          string
	timecodeScale uint64 // nanoseconds per timecode tick
	tracks        map[uint64]Modality
	dims          map[Modality][2]int
	calib         *Calibration
	clusters      []cluster
	next          int
	closed        bool
}

// Open reads and decodes the recording at path.
func Open(path string) (*Playback, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	var c container
	if err := ebml.Unmarshal(f, &c, ebml.WithIgnoreUnknown(true)); err != nil {
		return nil, fmt.Errorf("decode recording %q: %w", path, err)
	}

	p := &Playback{
		path:          path,
		timecodeScale: c.Segment.Info.TimecodeScale,
		tracks:        make(map[uint64]Modality),
		dims:          make(map[Modality][2]int),
		clusters:      c.Segment.Cluster,
	}
	if p.timecodeScale == 0 {
		// Matroska default: one millisecond ticks.
		p.timecodeScale = 1000000
	}

	for _, entry := range c.Segment.Tracks.TrackEntry {
		m, ok := modalityForTrack(entry.Name)
		if !ok {
			continue
		}
		if _, dup := p.dims[m]; dup {
			return nil, fmt.Errorf("recording %q declares track %q twice", path, entry.Name)
		}
		p.tracks[entry.TrackNumber] = m
		var w, h int
		if entry.Video != nil {
			w, h = int(entry.Video.PixelWidth), int(entry.Video.PixelHeight)
		}
		p.dims[m] = [2]int{w, h}

		if m == ModalityDepth && len(entry.CodecPrivate) > 0 {
			calib, err := ParseCalibration(entry.CodecPrivate)
			if err != nil {
				return nil, fmt.Errorf("recording %q: %w", path, err)
			}
			p.calib = calib
		}
	}

	if len(p.tracks) == 0 {
		return nil, fmt.Errorf("recording %q contains no color, depth or infrared track", path)
	}

	return p, nil
}

// Enabled reports whether the recording declares a track for the modality.
func (p *Playback) Enabled(m Modality) bool {
	_, ok := p.dims[m]
	return ok
}

// Modalities returns the recorded modalities in export order.
func (p *Playback) Modalities() []Modality {
	var out []Modality
	for _, m := range AllModalities {
		if p.Enabled(m) {
			out = append(out, m)
		}
	}
	return out
}

// Calibration returns the device calibration embedded in the recording, or
// nil when the recording carries none.
func (p *Playback) Calibration() *Calibration {
	return p.calib
}

// Dimensions returns the raster size for a modality. Calibration is the
// authority when present; the track's declared pixel size is the fallback.
func (p *Playback) Dimensions(m Modality) (int, int) {
	if p.calib != nil {
		switch m {
		case ModalityColor:
			if p.calib.Color.Width > 0 {
				return p.calib.Color.Width, p.calib.Color.Height
			}
		case ModalityDepth, ModalityInfrared:
			if p.calib.Depth.Width > 0 {
				return p.calib.Depth.Width, p.calib.Depth.Height
			}
		}
	}
	d := p.dims[m]
	return d[0], d[1]
}

// Next returns the next capture, or io.EOF at end of stream. Payload buffers
// are copies; the caller owns them outright.
func (p *Playback) Next() (*Frame, error) {
	if p.closed {
		return nil, fmt.Errorf("playback is closed")
	}

	for p.next < len(p.clusters) {
		cl := p.clusters[p.next]
		p.next++

		frame := &Frame{}
		for _, block := range cl.SimpleBlock {
			m, ok := p.tracks[block.TrackNumber]
			if !ok || len(block.Data) == 0 || len(block.Data[0]) == 0 {
				continue
			}
			ts := p.deviceTimestamp(cl.Timecode, block.Timecode)
			sub := &SubImage{
				Format:          formatFor(m),
				Data:            append([]byte(nil), block.Data[0]...),
				DeviceTimestamp: ts,
			}
			switch m {
			case ModalityColor:
				frame.Color = sub
			case ModalityDepth:
				frame.Depth = sub
			case ModalityInfrared:
				frame.Infrared = sub
			}
		}

		if !frame.Empty() {
			return frame, nil
		}
	}

	return nil, io.EOF
}

// Close releases the playback. Further Next calls fail.
func (p *Playback) Close() error {
	p.closed = true
	p.clusters = nil
	return nil
}

// deviceTimestamp converts cluster + block timecodes into microseconds of
// device time.
func (p *Playback) deviceTimestamp(clusterTC uint64, blockTC int16) int64 {
	ticks := int64(clusterTC) + int64(blockTC)
	return ticks * int64(p.timecodeScale) / 1000
}

func formatFor(m Modality) Format {
	switch m {
	case ModalityColor:
		return FormatMJPG
	case ModalityInfrared:
		return FormatIR16
	default:
		return FormatDepth16
	}
}
