package hello

// Message is the fixed greeting returned by GET /hello.
const Message = "Hello, world!"

// Data models the response payload for the hello endpoint.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello, world!"`
}
