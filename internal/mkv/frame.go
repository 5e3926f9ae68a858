package mkv

// Modality identifies one of the recorded image streams.
type Modality string

const (
	ModalityColor    Modality = "color"
	ModalityDepth    Modality = "depth"
	ModalityInfrared Modality = "infrared"
)

// AllModalities lists every modality a recording may carry, in the order
// exports and previews iterate them.
var AllModalities = []Modality{ModalityColor, ModalityDepth, ModalityInfrared}

// Format tags the pixel layout of a SubImage payload.
type Format int

const (
	// FormatMJPG is an already-compressed JPEG byte stream.
	FormatMJPG Format = iota
	// FormatDepth16 is a 16-bit little-endian depth raster in millimeters.
	FormatDepth16
	// FormatIR16 is a 16-bit little-endian infrared intensity raster.
	FormatIR16
)

// SubImage is one modality's payload within a capture. Data is owned by the
// holder; Playback returns fresh buffers on every Next call.
type SubImage struct {
	Format Format
	Data   []byte
	// DeviceTimestamp is the device clock timestamp in microseconds.
	DeviceTimestamp int64
}

// Frame is one capture unit: zero-or-one sub-image per modality. It lives for
// a single pipeline iteration and is decomposed before queuing.
type Frame struct {
	Color    *SubImage
	Depth    *SubImage
	Infrared *SubImage
}

// Sub returns the sub-image for the given modality, or nil when absent.
func (f *Frame) Sub(m Modality) *SubImage {
	switch m {
	case ModalityColor:
		return f.Color
	case ModalityDepth:
		return f.Depth
	case ModalityInfrared:
		return f.Infrared
	}
	return nil
}

// Empty reports whether the frame carries no sub-image at all.
func (f *Frame) Empty() bool {
	return f.Color == nil && f.Depth == nil && f.Infrared == nil
}
