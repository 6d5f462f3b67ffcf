package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

// buildRaw assembles an RFC 5322 message with a text body and an optional
// attachment. SES requires a raw payload for anything beyond plain
// text/html, so attachments always go through this path.
func buildRaw(from string, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", writer.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textHeader.Set("Content-Transfer-Encoding", "quoted-printable")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("creating text part: %w", err)
	}
	qp := quotedprintable.NewWriter(textPart)
	if _, err := qp.Write([]byte(msg.TextBody)); err != nil {
		return nil, fmt.Errorf("encoding text body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("closing text encoder: %w", err)
	}

	if msg.Attachment != nil && len(msg.Attachment.Data) > 0 {
		if err := writeAttachment(writer, msg.Attachment); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAttachment(writer *multipart.Writer, att *Attachment) error {
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", fmt.Sprintf("%s; name=%q", contentType, att.Filename))
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating attachment part: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(att.Data)
	// Wrap at 76 characters per RFC 2045.
	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[:n])); err != nil {
			return fmt.Errorf("writing attachment data: %w", err)
		}
		if _, err := part.Write([]byte("\r\n")); err != nil {
			return fmt.Errorf("writing attachment data: %w", err)
		}
		encoded = encoded[n:]
	}
	return nil
}
