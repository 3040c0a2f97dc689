package imap

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

const multipartMessage = "From: Shop <news@shop.test>\r\n" +
	"Subject: =?UTF-8?Q?Big_sale?=\r\n" +
	"List-Unsubscribe: <https://shop.test/u?id=1>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"Everything =3D 50% off\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Everything 50% off</p>\r\n" +
	"--XYZ--\r\n"

func decode(t *testing.T, s string) string {
	t.Helper()
	b, err := base64.URLEncoding.DecodeString(s)
	be.Err(t, err, nil)
	return string(b)
}

func TestParseMultipart(t *testing.T) {
	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, err := parseMessage("42", date, strings.NewReader(multipartMessage))
	be.Err(t, err, nil)

	be.Equal(t, raw.RemoteID, "42")
	be.Equal(t, raw.InternalDate, date)
	subject, _ := raw.Header("Subject")
	be.Equal(t, subject, "Big sale")
	unsub, _ := raw.Header("list-unsubscribe")
	be.Equal(t, unsub, "<https://shop.test/u?id=1>")

	be.Equal(t, raw.Payload.MimeType, "multipart/alternative")
	be.Equal(t, len(raw.Payload.Parts), 2)
	be.Equal(t, raw.Payload.Parts[0].MimeType, "text/plain")
	be.True(t, strings.HasPrefix(decode(t, raw.Payload.Parts[0].Data), "Everything = 50% off"))
	be.Equal(t, raw.Payload.Parts[1].MimeType, "text/html")
}

func TestParseSinglePart(t *testing.T) {
	msg := "From: a@b.test\r\nSubject: hi\r\nContent-Type: text/html\r\n\r\n<b>hello</b>"
	raw, err := parseMessage("7", time.Now(), strings.NewReader(msg))
	be.Err(t, err, nil)
	be.Equal(t, raw.Payload.MimeType, "text/html")
	be.Equal(t, len(raw.Payload.Parts), 0)
	be.Equal(t, decode(t, raw.Payload.Data), "<b>hello</b>")
}

func TestParseUID(t *testing.T) {
	uid, err := parseUID("123")
	be.Err(t, err, nil)
	be.Equal(t, uid, uint32(123))

	_, err = parseUID("abc")
	be.Err(t, err)
}
