package api

import (
	"bytes"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the content type of msgpack-encoded responses.
const MIMEApplicationMsgpack = "application/msgpack"

// respond writes v as JSON, or as msgpack when the client asks for it.
// Both encodings use the json field names.
func respond(c echo.Context, status int, v interface{}) error {
	if !wantsMsgpack(c) {
		return c.JSON(status, v)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return c.Blob(status, MIMEApplicationMsgpack, buf.Bytes())
}

func wantsMsgpack(c echo.Context) bool {
	for _, part := range strings.Split(c.Request().Header.Get(echo.HeaderAccept), ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mediaType == MIMEApplicationMsgpack || mediaType == "application/x-msgpack" {
			return true
		}
	}
	return false
}
