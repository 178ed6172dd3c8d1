package autofill

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/formfill/browser"
	"github.com/hazyhaar/formfill/idgen"
)

// toastJS renders a transient corner notification in the page. The element
// id is randomized per toast so repeated invocations never collide, and the
// node removes itself so no trace outlives the timeout.
const toastJS = `(id, msg, color, ms) => {
	const old = document.getElementById(id);
	if (old) old.remove();
	const el = document.createElement('div');
	el.id = id;
	el.textContent = msg;
	el.style.cssText = 'position:fixed;top:16px;right:16px;z-index:2147483647;' +
		'padding:10px 16px;border-radius:6px;color:#fff;font:13px/1.4 system-ui,sans-serif;' +
		'box-shadow:0 2px 8px rgba(0,0,0,.25);transition:opacity .3s;background:' + color + ';';
	document.documentElement.appendChild(el);
	setTimeout(() => { el.style.opacity = '0'; }, ms - 300);
	setTimeout(() => el.remove(), ms);
}`

var severityColors = map[Severity]string{
	SeverityInfo:    "#2563eb",
	SeveritySuccess: "#16a34a",
	SeverityWarning: "#d97706",
	SeverityError:   "#dc2626",
}

// Notifier shows in-page toasts. Disabled it is a no-op, so callers never
// branch on the setting.
type Notifier struct {
	tab     *browser.Tab
	enabled bool
	nanoid  idgen.Generator
	logger  *slog.Logger
}

func NewNotifier(tab *browser.Tab, enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{tab: tab, enabled: enabled, nanoid: idgen.NanoID(8), logger: logger}
}

// Show displays one toast. Notification failures are logged, never
// propagated: a broken toast must not fail the fill that produced it.
func (n *Notifier) Show(ctx context.Context, sev Severity, msg string) {
	if !n.enabled || n.tab == nil {
		return
	}
	color, ok := severityColors[sev]
	if !ok {
		color = severityColors[SeverityInfo]
	}
	id := "ff-toast-" + n.nanoid()
	_, err := n.tab.Page.Context(ctx).Eval(toastJS, id, msg, color, 4000)
	if err != nil {
		n.logger.Warn("toast failed", "severity", sev, "err", err)
	}
}
