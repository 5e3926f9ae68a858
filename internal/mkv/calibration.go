package mkv

import (
	"encoding/json"
	"fmt"
)

// Intrinsics is a pinhole camera model: focal lengths and principal point,
// all in pixels.
type Intrinsics struct {
	Fx float64 `json:"fx"`
	Fy float64 `json:"fy"`
	Cx float64 `json:"cx"`
	Cy float64 `json:"cy"`
}

// Camera describes one camera of the device: sensor resolution plus its
// intrinsic parameters.
type Camera struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Intrinsics Intrinsics `json:"intrinsics"`
}

// Extrinsics maps points from the depth camera frame into the color camera
// frame: row-major 3x3 rotation followed by a translation in millimeters.
type Extrinsics struct {
	Rotation    [9]float64 `json:"rotation"`
	Translation [3]float64 `json:"translation"`
}

// Calibration is the device calibration recorded with a session. It is
// carried as a JSON payload inside the recording container and shared,
// read-only, by the frame source and the depth transformer.
type Calibration struct {
	Depth        Camera     `json:"depth_camera"`
	Color        Camera     `json:"color_camera"`
	DepthToColor Extrinsics `json:"depth_to_color"`
}

// Complete reports whether the calibration carries enough data to drive the
// depth-to-color transform.
func (c *Calibration) Complete() bool {
	if c == nil {
		return false
	}
	if c.Depth.Width <= 0 || c.Depth.Height <= 0 || c.Color.Width <= 0 || c.Color.Height <= 0 {
		return false
	}
	if c.Depth.Intrinsics.Fx == 0 || c.Depth.Intrinsics.Fy == 0 {
		return false
	}
	if c.Color.Intrinsics.Fx == 0 || c.Color.Intrinsics.Fy == 0 {
		return false
	}
	// An all-zero rotation means the extrinsics were never filled in.
	var sum float64
	for _, r := range c.DepthToColor.Rotation {
		if r < 0 {
			sum -= r
		} else {
			sum += r
		}
	}
	return sum != 0
}

// ParseCalibration decodes the calibration JSON payload stored in the
// recording.
func ParseCalibration(data []byte) (*Calibration, error) {
	var c Calibration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid calibration payload: %w", err)
	}
	return &c, nil
}

// Marshal encodes the calibration for embedding into a recording.
func (c *Calibration) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode calibration: %w", err)
	}
	return data, nil
}
