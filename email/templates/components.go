// Package templates provides email template components
package templates

import "fmt"

func GetParagraph(text string) string {
	return fmt.Sprintf(`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">%s</p>`, text)
}

func GetHeading(text string) string {
	return fmt.Sprintf(`<h2 style="font-family: Helvetica, sans-serif; font-size: 20px; font-weight: bold; margin: 0; margin-bottom: 16px;">%s</h2>`, text)
}

// GetDetailRow renders one label/value line of a notification summary.
func GetDetailRow(label, value string) string {
	if value == "" {
		value = "&mdash;"
	}
	return fmt.Sprintf(`
    <tr>
      <td style="font-family: Helvetica, sans-serif; font-size: 14px; color: #6b7280; padding: 4px 16px 4px 0; vertical-align: top; white-space: nowrap;">%s</td>
      <td style="font-family: Helvetica, sans-serif; font-size: 14px; color: #111827; padding: 4px 0; vertical-align: top;">%s</td>
    </tr>`, label, value)
}

func GetDetailTable(rows string) string {
	return fmt.Sprintf(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: collapse; margin-bottom: 16px;">
      <tbody>%s
      </tbody>
    </table>`, rows)
}

type EmailLayoutProps struct {
	Content string
}

func GetEmailLayout(props EmailLayoutProps) string {
	return fmt.Sprintf(`<!doctype html>
<html>
  <body style="background-color: #f4f5f6; font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.3; margin: 0; padding: 0;">
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="background-color: #f4f5f6; width: 100%%;" width="100%%">
      <tr>
        <td>&nbsp;</td>
        <td style="display: block; max-width: 600px; padding: 24px; margin: 0 auto;">
          <div style="background: #ffffff; border-radius: 8px; padding: 24px;">
            %s
          </div>
          <p style="color: #9ca3af; font-size: 12px; text-align: center; margin-top: 16px;">PeakReach Media &middot; automated notification</p>
        </td>
        <td>&nbsp;</td>
      </tr>
    </table>
  </body>
</html>`, props.Content)
}
