package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"geocam/internal/logger"
	"geocam/internal/model"
	"geocam/internal/service/location"
	"geocam/internal/service/permission"

	"github.com/gorilla/websocket"
)

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// maxFrameBytes bounds a JPEG frame reassembled from UDP packets.
const maxFrameBytes = 4 << 20

// FrameSink receives frames from camera devices.
type FrameSink interface {
	Feed(facing model.Facing, data []byte)
	Connect(facing model.Facing)
	Disconnect(facing model.Facing)
}

// FixSink receives position fixes from the device.
type FixSink interface {
	Update(fix location.Fix)
}

// ConsentSink records consent decisions made on the device.
type ConsentSink interface {
	Set(kind permission.Kind, status permission.Status)
}

// deviceMessage is a JSON control message sent by a camera device.
type deviceMessage struct {
	Type string `json:"type"` // "position" or "consent"

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds

	Permission string `json:"permission"`
	Status     string `json:"status"`
}

// CameraWebsocketHandler accepts a camera device connection on /camera?facing=back|front.
// Binary messages are JPEG frames; text messages carry position fixes and consent.
func CameraWebsocketHandler(frames FrameSink, fixes FixSink, consent ConsentSink, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facing, err := model.ParseFacing(r.URL.Query().Get("facing"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		defer connection.Close()

		frames.Connect(facing)
		defer frames.Disconnect(facing)
		logger.Info("📷 Camera device connected (%s)", facing)

		for {
			messageType, data, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Camera device disconnected (%s)", facing)
				} else {
					logger.Error("Camera device disconnected with error (%s): %v", facing, err)
				}
				return
			}

			switch messageType {
			case websocket.BinaryMessage:
				if !bytes.HasPrefix(data, jpegHeader) {
					logger.Warning("Dropping non-JPEG frame from %s camera", facing)
					continue
				}
				frames.Feed(facing, data)
			case websocket.TextMessage:
				handleDeviceMessage(data, fixes, consent, logger)
			}
		}
	}
}

func handleDeviceMessage(data []byte, fixes FixSink, consent ConsentSink, logger *logger.Logger) {
	var msg deviceMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warning("Invalid device message: %v", err)
		return
	}

	switch msg.Type {
	case "position":
		fix := location.Fix{
			Latitude:  msg.Latitude,
			Longitude: msg.Longitude,
			Accuracy:  msg.Accuracy,
			Timestamp: time.Now(),
		}
		if msg.Timestamp > 0 {
			fix.Timestamp = time.UnixMilli(msg.Timestamp)
		}
		fixes.Update(fix)
	case "consent":
		kind, err := permission.ParseKind(msg.Permission)
		if err != nil {
			logger.Warning("Invalid consent message: %v", err)
			return
		}
		status, err := permission.ParseStatus(msg.Status)
		if err != nil {
			logger.Warning("Invalid consent message: %v", err)
			return
		}
		consent.Set(kind, status)
		logger.Info("Device set %s permission to %s", kind, status)
	default:
		logger.Warning("Unknown device message type %q", msg.Type)
	}
}

// UDPCameraHandler listens for UDP packets from a camera, reconstructs JPEG frames,
// and feeds complete frames as the back camera. It returns when ctx is done.
func UDPCameraHandler(ctx context.Context, frames FrameSink, logger *logger.Logger, port int) {
	addr, err := net.ResolveUDPAddr("udp", ":"+strconv.Itoa(port))
	if err != nil {
		logger.Error("Failed to resolve UDP address: %v", err)
		return
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		logger.Error("Failed to listen on UDP port %d: %v", port, err)
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.Info("UDP Camera handler started on port %d", port)

	buffer := make([]byte, 2048)
	assembler := newFrameAssembler(maxFrameBytes)

	for {
		n, remoteAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("UDP Camera handler stopped")
				return
			}
			logger.Error("Error reading UDP packet: %v", err)
			continue
		}

		sender := remoteAddr.IP.String()
		frame, err := assembler.Push(sender, buffer[:n])
		if err != nil {
			logger.Warning("Dropping frame from %s: %v", sender, err)
			continue
		}
		if frame != nil {
			frames.Feed(model.FacingBack, frame)
		}
	}
}

var errFrameTooLarge = errors.New("frame exceeds size limit")

// frameAssembler rebuilds JPEG frames from packets, one buffer per sender.
type frameAssembler struct {
	limit   int
	buffers map[string]*bytes.Buffer
}

func newFrameAssembler(limit int) *frameAssembler {
	return &frameAssembler{limit: limit, buffers: make(map[string]*bytes.Buffer)}
}

// Push appends a packet to the sender's buffer and returns the frame once its
// footer arrives. The returned slice is only valid until the next Push for that
// sender. A buffer that would grow past the limit is discarded.
func (a *frameAssembler) Push(sender string, data []byte) ([]byte, error) {
	buf, ok := a.buffers[sender]
	if !ok {
		buf = new(bytes.Buffer)
		a.buffers[sender] = buf
	}

	if bytes.HasPrefix(data, jpegHeader) {
		buf.Reset()
	}
	if buf.Len()+len(data) > a.limit {
		delete(a.buffers, sender)
		return nil, errFrameTooLarge
	}
	buf.Write(data)

	if bytes.HasSuffix(data, jpegFooter) {
		frame := buf.Bytes()
		buf.Reset()
		return frame, nil
	}
	return nil, nil
}

// Pending reports how many bytes are buffered for sender.
func (a *frameAssembler) Pending(sender string) int {
	if buf, ok := a.buffers[sender]; ok {
		return buf.Len()
	}
	return 0
}

