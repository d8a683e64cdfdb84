package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/eventdesk/internal/api"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/textutil"
	"github.com/devilmonastery/eventdesk/internal/pkg/urlutil"
)

// excerptLength is how much of a message body the inbox listing shows
const excerptLength = 60

func newMessagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"message", "inbox"},
		Short:   "Read and answer contact-form messages",
	}

	cmd.AddCommand(newMessagesListCommand())
	cmd.AddCommand(newMessagesShowCommand())
	cmd.AddCommand(newMessagesReadCommand())
	cmd.AddCommand(newMessagesReplyCommand())

	return cmd
}

func newMessagesListCommand() *cobra.Command {
	var (
		filter api.MessageFilter
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}
			service := getCliContext(cmd).API

			messages, err := service.Messages.List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list messages: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, messages)
			}

			unread, err := service.Messages.UnreadCount(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to count unread messages: %w", err)
			}
			fmt.Fprintf(out, "%d unread\n\n", unread)
			return printMessages(out, messages)
		},
	}

	cmd.Flags().BoolVarP(&filter.UnreadOnly, "unread", "u", false, "Only unread messages")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Match sender, subject or body")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of messages")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Skip this many messages")
	addOutputFlag(cmd, &format)

	return cmd
}

func printMessages(out io.Writer, messages []entities.Message) error {
	if len(messages) == 0 {
		fmt.Fprintln(out, "No messages")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, " \tID\tRECEIVED\tFROM\tSUBJECT\tPREVIEW")
	for _, m := range messages {
		marker := " "
		if !m.Read {
			marker = "●"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			marker, m.ID, m.CreatedAt.Local().Format("2006-01-02 15:04"),
			m.Name, orDash(m.Subject), textutil.Excerpt(m.Body, excerptLength))
	}
	return w.Flush()
}

func newMessagesShowCommand() *cobra.Command {
	var keepUnread bool

	cmd := &cobra.Command{
		Use:   "show MESSAGE_ID",
		Short: "Show a message and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			m, err := cliCtx.API.Messages.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get message: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "From: %s <%s>\n", m.Name, m.Email)
			if m.Phone != "" {
				fmt.Fprintf(out, "Phone: %s\n", m.Phone)
			}
			fmt.Fprintf(out, "Subject: %s\n", orDash(m.Subject))
			fmt.Fprintf(out, "Received: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04 MST"))
			if m.RepliedAt != nil {
				fmt.Fprintf(out, "Replied: %s\n", m.RepliedAt.Local().Format("2006-01-02 15:04 MST"))
			}
			if link, err := urlutil.BuildMessageViewURL(cliCtx.API.Client.BaseURL(), m.ID); err == nil {
				fmt.Fprintf(out, "View: %s\n", link)
			}
			fmt.Fprintln(out)
			printMarkdown(out, cliCtx.Config, m.Body)

			if !m.Read && !keepUnread {
				if _, err := cliCtx.API.Messages.MarkRead(cmd.Context(), m.ID); err != nil {
					return fmt.Errorf("failed to mark message read: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepUnread, "keep-unread", false, "Do not mark the message read")

	return cmd
}

func newMessagesReadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read MESSAGE_ID",
		Short: "Mark a message read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := getCliContext(cmd).API.Messages.MarkRead(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to mark message read: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Marked %s read\n", args[0])
			return nil
		},
	}
}

func newMessagesReplyCommand() *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "reply MESSAGE_ID",
		Short: "Reply to a message",
		Long: `Send a reply to the sender of a message. The body comes from --body,
or from stdin when --body is "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if body == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read reply from stdin: %w", err)
				}
				body = string(data)
			}
			if strings.TrimSpace(body) == "" {
				return fmt.Errorf("reply body is required")
			}

			m, err := getCliContext(cmd).API.Messages.Reply(cmd.Context(), args[0], body)
			if err != nil {
				return fmt.Errorf("failed to send reply: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Replied to %s <%s>\n", m.Name, m.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&body, "body", "b", "", `Reply text in markdown, or "-" to read stdin`)

	return cmd
}
