// Package soap serves the tracker operations as SOAP 1.1 over POST /soap.
// The first element inside soap:Body names the operation; the reply is a
// single <Op>Response element or a soap:Fault.
package soap

import (
	"bytes"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"

	"tracker/internal/services"
	"tracker/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	EnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

	maxBodyBytes = 1 << 20
)

type requestEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"Body"`
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	NS      string   `xml:"xmlns:soap,attr"`
	Body    struct {
		Content any
	} `xml:"soap:Body"`
}

type Fault struct {
	XMLName xml.Name `xml:"soap:Fault"`
	Code    string   `xml:"faultcode"`
	String  string   `xml:"faultstring"`
	Detail  struct {
		Code string `xml:"code"`
	} `xml:"detail"`
}

// FaultCodeFor maps an error kind onto the SOAP 1.1 fault code: the caller
// is at fault for everything except server-side failures.
func FaultCodeFor(kind services.Kind) string {
	switch kind {
	case services.KindDBError, services.KindHashError, services.KindInternal:
		return "soap:Server"
	default:
		return "soap:Client"
	}
}

type Handler struct {
	svc        *services.Services
	sessions   *session.Registry
	logger     *slog.Logger
	operations map[string]operation
}

func NewHandler(svc *services.Services, sessions *session.Registry, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, sessions: sessions, logger: logger}
	h.operations = h.buildOperations()
	return h
}

// Mount registers POST /soap on r.
func (h *Handler) Mount(r *gin.Engine) {
	r.POST("/soap", h.Serve)
}

func (h *Handler) Serve(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.fault(c, invalid("request body is too large or unreadable"))
		return
	}

	var env requestEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		h.fault(c, invalid("malformed SOAP envelope"))
		return
	}

	dec := xml.NewDecoder(bytes.NewReader(env.Body.Inner))
	start, err := firstElement(dec)
	if err != nil {
		h.fault(c, invalid("SOAP body has no operation element"))
		return
	}

	name := start.Name.Local
	op, ok := h.operations[name]
	if !ok {
		h.fault(c, invalid("unknown operation "+name))
		return
	}

	req, err := op.decode(dec, start)
	if err != nil {
		h.fault(c, invalid("malformed "+name+" request"))
		return
	}

	ctx := c.Request.Context()
	if op.auth {
		var token string
		if carrier, ok := req.(tokenCarrier); ok {
			token = carrier.sessionToken()
		}
		p, ok, err := h.sessions.Validate(ctx, token)
		if err != nil {
			h.fault(c, err)
			return
		}
		if !ok {
			h.fault(c, services.ErrUnauthorized)
			return
		}
		actor, _ := services.ActorFrom(ctx)
		actor.UserID, actor.Username = p.UserID, p.Username
		ctx = services.WithActor(ctx, actor)
	}

	resp, err := op.run(ctx, req)
	if err != nil {
		h.fault(c, err)
		return
	}
	resp.XMLName = xml.Name{Space: Namespace, Local: name + "Response"}
	h.write(c, http.StatusOK, resp)
}

func firstElement(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &start, nil
		}
	}
}

func invalid(msg string) error {
	return &services.Error{Kind: services.KindInvalidInput, Message: msg}
}

func (h *Handler) fault(c *gin.Context, err error) {
	e := services.AsError(err)
	if e.Internal() {
		h.logger.Error("SOAP request failed", "kind", e.Kind, "error", e.Err)
	}
	f := &Fault{Code: FaultCodeFor(e.Kind), String: e.Message}
	f.Detail.Code = string(e.Kind)
	h.write(c, http.StatusInternalServerError, f)
}

func (h *Handler) write(c *gin.Context, status int, content any) {
	env := responseEnvelope{NS: EnvelopeNS}
	env.Body.Content = content

	out, err := xml.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to encode SOAP response", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "text/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
