package voice

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"
)

const (
	defaultASRHost = "iat-api.xfyun.cn"
	asrPath        = "/v2/iat"
)

// HandshakeURL builds the signed WebSocket URL for the recognizer. The
// signature covers the host, an RFC1123 date and the request line, HMAC-SHA256
// keyed with the API secret, and travels base64-wrapped in the authorization
// query parameter.
func HandshakeURL(scheme, host, apiKey, apiSecret string, now time.Time) string {
	date := now.UTC().Format(time.RFC1123)
	// RFC1123 uses "UTC"; the provider expects "GMT".
	date = date[:len(date)-3] + "GMT"

	signatureOrigin := fmt.Sprintf("host: %s\ndate: %s\nGET %s HTTP/1.1", host, date, asrPath)

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(signatureOrigin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authOrigin := fmt.Sprintf(
		`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		apiKey, signature,
	)
	authorization := base64.StdEncoding.EncodeToString([]byte(authOrigin))

	q := url.Values{}
	q.Set("authorization", authorization)
	q.Set("date", date)
	q.Set("host", host)

	return fmt.Sprintf("%s://%s%s?%s", scheme, host, asrPath, q.Encode())
}
