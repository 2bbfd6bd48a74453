// Package apigw builds API Gateway proxy responses.
package apigw

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderAllowOrigin        = "Access-Control-Allow-Origin"
	HeaderAllowHeaders       = "Access-Control-Allow-Headers"
	HeaderAllowMethods       = "Access-Control-Allow-Methods"

	ContentTypeJSON = "application/json"
)

// CORS returns the CORS header set for origin and methods.
// An empty methods string leaves out the methods and headers entries.
func CORS(origin, methods string) map[string]string {
	h := map[string]string{HeaderAllowOrigin: origin}
	if methods != "" {
		h[HeaderAllowMethods] = methods
		h[HeaderAllowHeaders] = HeaderContentType
	}
	return h
}

func withHeaders(base map[string]string, extra map[string]string) map[string]string {
	h := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		h[k] = v
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// JSON encodes v as the response body.
func JSON(status int, headers map[string]string, v any) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    withHeaders(headers, map[string]string{HeaderContentType: ContentTypeJSON}),
		Body:       string(body),
	}
}

// Binary returns data base64-encoded with IsBase64Encoded set, so API
// Gateway decodes it before sending it to the client.
func Binary(status int, headers map[string]string, contentType string, data []byte) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode:      status,
		Headers:         withHeaders(headers, map[string]string{HeaderContentType: contentType}),
		Body:            base64.StdEncoding.EncodeToString(data),
		IsBase64Encoded: true,
	}
}
