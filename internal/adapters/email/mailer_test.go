package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	tests := []struct {
		name       string
		fromName   string
		html       string
		text       string
		sendErr    error
		wantSource string
		wantErr    bool
	}{
		{name: "html and text with from name", fromName: "Embervite", html: "<p>hi</p>", text: "hi", wantSource: "Embervite <invites@example.com>"},
		{name: "text only", text: "hi", wantSource: "invites@example.com"},
		{name: "ses error", text: "hi", sendErr: errors.New("throttled"), wantSource: "invites@example.com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSES{err: tt.sendErr}
			m := newSESMailer(client, "invites@example.com", tt.fromName, testLogger)

			err := m.Send(context.Background(), "guest@example.com", "Subject", tt.html, tt.text)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, client.input)
			assert.Equal(t, tt.wantSource, aws.ToString(client.input.Source))
			assert.Equal(t, []string{"guest@example.com"}, client.input.Destination.ToAddresses)
			assert.Equal(t, "Subject", aws.ToString(client.input.Message.Subject.Data))
			assert.Equal(t, tt.html != "", client.input.Message.Body.Html != nil)
			assert.Equal(t, tt.text != "", client.input.Message.Body.Text != nil)
		})
	}
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
	require.NoError(t, m.Send(context.Background(), "a@b.com", "s", "", "t"))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, testLogger)
	require.Error(t, err, "ses requires a from address")

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "invites@example.com", SES: SESConfig{Region: "us-east-1"}}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
