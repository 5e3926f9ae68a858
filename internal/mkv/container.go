package mkv

import (
	"github.com/at-wat/ebml-go"
)

// Container layout shared by Playback and Writer. Only the WebM-core subset
// of Matroska elements is used: per-modality tracks are identified by the
// TrackEntry Name (COLOR / DEPTH / IR, the convention used by depth-camera
// recorders), and the calibration JSON rides in the depth track's
// CodecPrivate because the WebM element subset has no Attachments element.

const (
	trackNameColor    = "COLOR"
	trackNameDepth    = "DEPTH"
	trackNameInfrared = "IR"

	codecMJPEG = "V_MJPEG"
	codecRaw16 = "V_RAW16"

	// One timecode tick is one microsecond, so device timestamps survive the
	// container round trip exactly.
	timecodeScaleNS = 1000

	trackTypeVideo = 1
)

type ebmlHeader struct {
	EBMLVersion        uint64 `ebml:"EBMLVersion"`
	EBMLReadVersion    uint64 `ebml:"EBMLReadVersion"`
	EBMLMaxIDLength    uint64 `ebml:"EBMLMaxIDLength"`
	EBMLMaxSizeLength  uint64 `ebml:"EBMLMaxSizeLength"`
	DocType            string `ebml:"EBMLDocType"`
	DocTypeVersion     uint64 `ebml:"EBMLDocTypeVersion"`
	DocTypeReadVersion uint64 `ebml:"EBMLDocTypeReadVersion"`
}

type segmentInfo struct {
	TimecodeScale uint64 `ebml:"TimecodeScale"`
	MuxingApp     string `ebml:"MuxingApp,omitempty"`
	WritingApp    string `ebml:"WritingApp,omitempty"`
}

type trackVideo struct {
	PixelWidth  uint64 `ebml:"PixelWidth"`
	PixelHeight uint64 `ebml:"PixelHeight"`
}

type trackEntry struct {
	Name         string      `ebml:"Name,omitempty"`
	TrackNumber  uint64      `ebml:"TrackNumber"`
	TrackUID     uint64      `ebml:"TrackUID"`
	TrackType    uint64      `ebml:"TrackType"`
	CodecID      string      `ebml:"CodecID"`
	CodecPrivate []byte      `ebml:"CodecPrivate,omitempty"`
	Video        *trackVideo `ebml:"Video,omitempty"`
}

type trackList struct {
	TrackEntry []trackEntry `ebml:"TrackEntry"`
}

// cluster is one capture: every present modality contributes exactly one
// SimpleBlock, timestamped relative to the cluster timecode.
type cluster struct {
	Timecode    uint64       `ebml:"Timecode"`
	SimpleBlock []ebml.Block `ebml:"SimpleBlock"`
}

type segment struct {
	Info    segmentInfo `ebml:"Info"`
	Tracks  trackList   `ebml:"Tracks"`
	Cluster []cluster   `ebml:"Cluster"`
}

type container struct {
	Header  ebmlHeader `ebml:"EBML"`
	Segment segment    `ebml:"Segment"`
}

func newHeader() ebmlHeader {
	return ebmlHeader{
		EBMLVersion:        1,
		EBMLReadVersion:    1,
		EBMLMaxIDLength:    4,
		EBMLMaxSizeLength:  8,
		DocType:            "matroska",
		DocTypeVersion:     4,
		DocTypeReadVersion: 2,
	}
}

func trackName(m Modality) string {
	switch m {
	case ModalityColor:
		return trackNameColor
	case ModalityDepth:
		return trackNameDepth
	case ModalityInfrared:
		return trackNameInfrared
	}
	return ""
}

func modalityForTrack(name string) (Modality, bool) {
	switch name {
	case trackNameColor:
		return ModalityColor, true
	case trackNameDepth:
		return ModalityDepth, true
	case trackNameInfrared:
		return ModalityInfrared, true
	}
	return "", false
}
