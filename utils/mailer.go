package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"taskboard/config"
)

type assignmentEmailData struct {
	Subject   string
	TaskTitle string
	GroupName string
	DueDate   string
	Year      int
}

// Embedded email templates
var emailTemplates = map[string]string{
	"task_assigned": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .task-title { font-size: 20px; font-weight: bold; color: #3498db; margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>A task was assigned to you</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>You have been assigned the following task in group {{.GroupName}}:</p>

        <div class="task-title">{{.TaskTitle}}</div>

        {{if .DueDate}}<p>Due date: {{.DueDate}}</p>{{end}}
    </div>

    <div class="footer">
        <p>© {{.Year}} Taskboard. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// SendTaskAssignedEmail notifies the assignee about a new or changed
// assignment. Callers treat failures as non-fatal; a task update never
// fails because the notification could not be delivered.
func SendTaskAssignedEmail(to, taskTitle, groupName string, dueDate *time.Time) error {
	if config.AppConfig.SMTPHost == "" {
		// SMTP not configured, notifications are disabled
		return nil
	}

	data := assignmentEmailData{
		Subject:   "New task assignment",
		TaskTitle: taskTitle,
		GroupName: groupName,
		Year:      time.Now().Year(),
	}
	if dueDate != nil {
		data.DueDate = dueDate.Format("Jan 2, 2006")
	}

	tmpl, err := template.New("task_assigned").Parse(emailTemplates["task_assigned"])
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	port, err := strconv.Atoi(config.AppConfig.SMTPPort)
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		port,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)
	return d.DialAndSend(m)
}
