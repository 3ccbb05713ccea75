package notification

import "github.com/raykavin/aegis/core"

var (
	_ core.NotifierWithStart = (*Telegram)(nil)
	_ core.Notifier          = Mail{}
)
