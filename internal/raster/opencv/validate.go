package opencv

import (
	"fmt"

	"gocv.io/x/gocv"
)

// OpenCV refuses to encode TIFF pages beyond this edge length.
const maxEdge = 1 << 16

func validateMat(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}
	return validateDimensions(mat.Cols(), mat.Rows(), operation)
}

func validateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}
	if width >= maxEdge || height >= maxEdge {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}
	return nil
}
