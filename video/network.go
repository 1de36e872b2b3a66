package video

// #cgo pkg-config: libavformat
// #include <libavformat/avformat.h>
import "C"
import "fmt"

// NetworkInitialize sets up libav's network layer so non-file locations
// can be opened.
func NetworkInitialize() error {
	if code := C.avformat_network_init(); code < 0 {
		return fmt.Errorf("error occurred: 0x%X", code)
	}

	return nil
}

// NetworkDeinitialize tears the network layer down again.
func NetworkDeinitialize() error {
	if code := C.avformat_network_deinit(); code < 0 {
		return fmt.Errorf("error occurred: 0x%X", code)
	}

	return nil
}
