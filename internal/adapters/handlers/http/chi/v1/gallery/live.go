package gallery

import (
	"net/http"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/pagectx"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/page"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Live message types
const (
	MessageTypePhotos = "photos"
	MessageTypeError  = "error"
	MessageTypeLocked = "locked"
)

// V1LiveMessage is pushed to the browser on every page change
type V1LiveMessage struct {
	Type    string                `json:"type"`
	UserID  string                `json:"userId,omitempty"`
	Ready   bool                  `json:"ready"`
	Photos  []domain.PhotoRecord  `json:"photos,omitempty"`
	Message string                `json:"message,omitempty"`
	Outcome *domain.UploadOutcome `json:"outcome,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func liveMessage(view page.View) V1LiveMessage {
	msg := V1LiveMessage{UserID: view.UserID, Ready: view.Ready}
	if view.Outcome.Status != domain.UploadStatusIdle {
		outcome := view.Outcome
		msg.Outcome = &outcome
	}
	switch {
	case !view.GalleryVisible():
		msg.Type = MessageTypeLocked
	case view.GalleryError != "":
		msg.Type = MessageTypeError
		msg.Message = view.GalleryError
	case view.AuthError != "":
		msg.Type = MessageTypeError
		msg.Message = view.AuthError
	default:
		msg.Type = MessageTypePhotos
		msg.Photos = view.Photos
	}
	return msg
}

// LiveV1 streams the gallery of the page over a websocket until the browser goes away
func (h *HandlerV1) LiveV1(w http.ResponseWriter, r *http.Request) {
	p := pagectx.From(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	changed := make(chan struct{}, 1)
	remove := p.Listen(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer remove()

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := writeMessage(conn, liveMessage(p.View())); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-changed:
			if err := writeMessage(conn, liveMessage(p.View())); err != nil {
				h.logger.Debug("websocket write failed", "error", err, "page_id", p.ID())
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg V1LiveMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump drains the connection so pongs and close frames are processed
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
