//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

// Notify shows a toast through the WinRT notification API, driven from a
// PowerShell one-liner so no extra dependency is needed.
func Notify(title, body string, opts Options) error {
	script := toastScript(title, body, strings.TrimSpace(opts.IconPath))
	return exec.Command("powershell.exe", "-NoProfile", "-Command", script).Run()
}

func toastScript(title, body, icon string) string {
	template := "ToastText02"
	if icon != "" {
		template = "ToastImageAndText02"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null; `)
	fmt.Fprintf(&b, `$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::%s); `, template)
	fmt.Fprintf(&b, `$texts = $template.GetElementsByTagName("text"); `)
	fmt.Fprintf(&b, `$texts.Item(0).AppendChild($template.CreateTextNode(%s)) > $null; `, psQuote(title))
	fmt.Fprintf(&b, `$texts.Item(1).AppendChild($template.CreateTextNode(%s)) > $null; `, psQuote(body))
	if icon != "" {
		fmt.Fprintf(&b, `$image = $template.GetElementsByTagName("image").Item(0); `)
		fmt.Fprintf(&b, `$image.SetAttribute("src", %s); `, psQuote(icon))
	}
	fmt.Fprintf(&b, `$toast = [Windows.UI.Notifications.ToastNotification]::new($template); `)
	fmt.Fprintf(&b, `$notifier = [Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(%s); `, psQuote(appName))
	fmt.Fprintf(&b, `$notifier.Show($toast);`)
	return b.String()
}

// psQuote wraps s in PowerShell single quotes, doubling any embedded quote.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
