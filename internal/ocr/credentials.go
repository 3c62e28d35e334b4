package ocr

import (
	"os"

	"google.golang.org/api/option"
)

// googleClientOptions resolves credentials the same way for every Google
// engine. The bool reports whether explicit credentials were found.
func googleClientOptions() ([]option.ClientOption, bool) {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}, true
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}, true
	}
	return nil, false
}
