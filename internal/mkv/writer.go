package mkv

import (
	"fmt"
	"math"
	"os"

	"github.com/at-wat/ebml-go"
)

// Writer builds a recording container in the dialect Playback reads: one
// cluster per capture, per-modality tracks named COLOR / DEPTH / IR, and the
// calibration JSON embedded in the depth track. Used to produce test
// recordings and small synthetic sessions.
type Writer struct {
	modalities []Modality
	dims       map[Modality][2]int
	calib      *Calibration
	clusters   []cluster
}

// NewWriter creates a writer for the given modalities. dims maps each
// modality to its raster width/height.
func NewWriter(modalities []Modality, dims map[Modality][2]int, calib *Calibration) *Writer {
	return &Writer{
		modalities: modalities,
		dims:       dims,
		calib:      calib,
	}
}

// Append records one capture. Sub-images for modalities the writer was not
// created with are ignored. Block timecodes are relative to the cluster, so
// sub-image timestamps within one capture must stay within the int16 tick
// range of the first one; a wider spread is rejected rather than silently
// truncated.
func (w *Writer) Append(frame *Frame) error {
	var (
		cl    cluster
		first = true
	)
	for _, m := range w.modalities {
		sub := frame.Sub(m)
		if sub == nil {
			continue
		}
		if first {
			cl.Timecode = uint64(sub.DeviceTimestamp)
			first = false
		}
		delta := sub.DeviceTimestamp - int64(cl.Timecode)
		if delta < math.MinInt16 || delta > math.MaxInt16 {
			return fmt.Errorf("capture spreads %s timestamp %dus beyond the cluster timecode range (%dus)",
				m, sub.DeviceTimestamp, cl.Timecode)
		}
		cl.SimpleBlock = append(cl.SimpleBlock, ebml.Block{
			TrackNumber: w.trackNumber(m),
			Timecode:    int16(delta),
			Keyframe:    true,
			Data:        [][]byte{append([]byte(nil), sub.Data...)},
		})
	}
	if !first {
		w.clusters = append(w.clusters, cl)
	}
	return nil
}

// WriteFile encodes the container to path.
func (w *Writer) WriteFile(path string) error {
	c := container{
		Header: newHeader(),
		Segment: segment{
			Info: segmentInfo{
				TimecodeScale: timecodeScaleNS,
				MuxingApp:     "mkv2image",
				WritingApp:    "mkv2image",
			},
			Cluster: w.clusters,
		},
	}

	for _, m := range w.modalities {
		entry := trackEntry{
			Name:        trackName(m),
			TrackNumber: w.trackNumber(m),
			TrackUID:    w.trackNumber(m),
			TrackType:   trackTypeVideo,
			CodecID:     codecRaw16,
		}
		if m == ModalityColor {
			entry.CodecID = codecMJPEG
		}
		if d, ok := w.dims[m]; ok && d[0] > 0 {
			entry.Video = &trackVideo{PixelWidth: uint64(d[0]), PixelHeight: uint64(d[1])}
		}
		if m == ModalityDepth && w.calib != nil {
			data, err := w.calib.Marshal()
			if err != nil {
				return err
			}
			entry.CodecPrivate = data
		}
		c.Segment.Tracks.TrackEntry = append(c.Segment.Tracks.TrackEntry, entry)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	defer f.Close()

	if err := ebml.Marshal(&c, f); err != nil {
		return fmt.Errorf("encode recording %q: %w", path, err)
	}
	return nil
}

func (w *Writer) trackNumber(m Modality) uint64 {
	for i, mod := range w.modalities {
		if mod == m {
			return uint64(i + 1)
		}
	}
	return 0
}
