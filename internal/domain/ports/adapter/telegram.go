package adapter

import "context"

// NotificationSink delivers messages and files to a chat. SendMessage is
// best-effort for progress updates; callers log failures instead of aborting.
type NotificationSink interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, filePath, filename, caption string) error
}
