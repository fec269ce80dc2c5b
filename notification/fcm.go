package notification

import (
	"context"
	"errors"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var errPushDisabled = errors.New("push delivery disabled: no Firebase credentials configured")

// PushClient wraps Firebase Cloud Messaging. A zero client is valid and
// reports every send as disabled, so the service runs without credentials.
type PushClient struct {
	msg *messaging.Client
}

// NewPushClient builds the FCM client from FIREBASE_CREDENTIALS_FILE.
func NewPushClient(ctx context.Context) (*PushClient, error) {
	credFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
	if credFile == "" {
		log.Println("FIREBASE_CREDENTIALS_FILE not set, push delivery disabled")
		return &PushClient{}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &PushClient{msg: client}, nil
}

// Send delivers one push message to a device token.
func (p *PushClient) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if p == nil || p.msg == nil {
		return errPushDisabled
	}
	_, err := p.msg.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	return err
}
