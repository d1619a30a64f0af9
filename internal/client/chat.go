package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/command-line-assistant/clad/internal/capture"
	"github.com/command-line-assistant/clad/internal/contextassembler"
	"github.com/command-line-assistant/clad/internal/daemon"
	"github.com/command-line-assistant/clad/internal/logging"
)

// DefaultChatName and DefaultChatDescription name the chat created when
// the user doesn't supply -n/--description, transcribing
// original_source/commands/chat.py's DEFAULT_CHAT_NAME/
// DEFAULT_CHAT_DESCRIPTION.
const (
	DefaultChatName        = "default"
	DefaultChatDescription = "Default Command Line Assistant Chat."
)

var (
	chatAttachment  string
	chatInteractive bool
	chatWithOutput  int
	chatHasOutput   bool
	chatList        bool
	chatDelete      string
	chatDeleteAll   bool
	chatName        string
	chatDescription string
)

var chatCmd = &cobra.Command{
	Use:   "chat [query]",
	Short: "Ask the assistant a question",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatAttachment, "attachment", "a", "", "Attach a file as additional context")
	chatCmd.Flags().BoolVarP(&chatInteractive, "interactive", "i", false, "Start an interactive chat session")
	chatCmd.Flags().IntVarP(&chatWithOutput, "with-output", "w", 0, "Include the Nth most recent captured command's output as context")
	chatCmd.Flags().BoolVarP(&chatList, "list", "l", false, "List all chat sessions")
	chatCmd.Flags().StringVarP(&chatDelete, "delete", "d", "", "Delete a chat session by name")
	chatCmd.Flags().BoolVar(&chatDeleteAll, "delete-all", false, "Delete all chat sessions")
	chatCmd.Flags().StringVarP(&chatName, "name", "n", "", "Name of the chat session")
	chatCmd.Flags().StringVar(&chatDescription, "description", "", "Description of the chat session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	chatHasOutput = cmd.Flags().Changed("with-output")

	bus, err := NewBusClient()
	if err != nil {
		return exitErr(ExitUnavailable, err)
	}
	defer bus.Close()

	userID, err := resolveUserID(bus)
	if err != nil {
		return exitErr(exitCodeFor(err, ExitUnavailable), err)
	}

	render := NewRenderer(plainOutput)

	name := chatName
	if name == "" {
		name = DefaultChatName
	}
	description := chatDescription
	if description == "" {
		description = DefaultChatDescription
	}
	if chatDescription == "" && chatName != "" {
		render.Warning("Chat description not provided. Using the default description: %q. "+
			"You can specify a custom description using the --description option.", DefaultChatDescription)
	}
	if chatName == "" && chatDescription != "" {
		render.Warning("Chat name not provided. Using the default name: %q. "+
			"You can specify a custom name using the -n option.", DefaultChatName)
	}

	switch {
	case chatList:
		return listChats(bus, render, userID)
	case chatDelete != "":
		return deleteChat(bus, render, userID, chatDelete)
	case chatDeleteAll:
		return deleteAllChats(bus, render, userID)
	case chatInteractive:
		return interactiveChat(bus, render, userID, name, description)
	default:
		query := strings.Join(args, " ")
		return askQuestion(bus, render, userID, name, description, query)
	}
}

// interactiveChat runs a REPL that submits each line as a question until
// the user types .exit, forbidden while terminal capture is active
// (spec.md §4.H).
func interactiveChat(bus *BusClient, render *Renderer, userID, name, description string) error {
	if capture.IsCaptureActive() {
		return exitErr(ExitChatError, fmt.Errorf("interactive chat cannot start while terminal capture is active"))
	}

	render.Notice("Entering interactive mode. Type .exit to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		render.Normal(">>> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ".exit" {
			return nil
		}
		if err := askQuestion(bus, render, userID, name, description, line); err != nil {
			render.Error("%v", err)
		}
	}
}

func listChats(bus *BusClient, render *Renderer, userID string) error {
	chats, err := bus.GetAllChatFromUser(userID)
	if err != nil {
		return exitErr(exitCodeFor(err, ExitChatError), err)
	}

	if len(chats) == 0 {
		render.Normal("No chats available.")
		return nil
	}

	render.Normal("Found a total of %d chats:", len(chats))
	for i, c := range chats {
		render.Normal("%d. Chat: %s - %s (created at: %s)", i, c.Name, c.Description, c.CreatedAt)
	}
	return nil
}

func deleteChat(bus *BusClient, render *Renderer, userID, name string) error {
	if err := bus.DeleteChatForUser(userID, name); err != nil {
		return exitErr(exitCodeFor(err, ExitChatError), fmt.Errorf("failed to delete requested chat %s: %w", name, err))
	}
	render.Normal("Chat %s deleted successfully.", name)
	return nil
}

func deleteAllChats(bus *BusClient, render *Renderer, userID string) error {
	if err := bus.DeleteAllChatForUser(userID); err != nil {
		return exitErr(exitCodeFor(err, ExitChatError), fmt.Errorf("failed to delete all requested chats: %w", err))
	}
	render.Normal("Deleted all chats successfully.")
	return nil
}

func askQuestion(bus *BusClient, render *Renderer, userID, name, description, query string) error {
	stdin := readStdin()

	if err := validateQueryComposition(query, stdin); err != nil {
		return exitErr(ExitUsage, err)
	}

	attachment, mimetype, err := readAttachment(chatAttachment)
	if err != nil {
		return exitErr(ExitDataErr, err)
	}

	terminalOutput := ""
	if chatHasOutput {
		terminalOutput = readTerminalOutput(chatWithOutput)
	}

	in := contextassembler.Input{
		Question:           query,
		Stdin:              stdin,
		Attachment:         attachment,
		AttachmentMimetype: mimetype,
		TerminalOutput:     terminalOutput,
	}
	if err := contextassembler.Validate(in.Question, in.Stdin); err != nil {
		return exitErr(ExitUsage, err)
	}
	assembled, err := contextassembler.Assemble(in)
	if err != nil {
		return exitErr(ExitDataErr, err)
	}

	chatID, err := getOrCreateChat(bus, userID, name, description)
	if err != nil {
		return exitErr(exitCodeFor(err, ExitChatError), err)
	}

	osName, version, id := osRelease()
	question := daemon.Question{
		Message:            assembled,
		Stdin:              stdin,
		AttachmentContents: attachment,
		AttachmentMimetype: mimetype,
		TerminalOutput:     terminalOutput,
		SystemOS:           osName,
		SystemVersion:      version,
		SystemArch:         machineArch(),
		SystemID:           id,
	}

	response, err := bus.AskQuestion(userID, chatID, question)
	if err != nil {
		return exitErr(exitCodeFor(err, ExitChatError), fmt.Errorf("failed to get a response from the assistant: %w", err))
	}

	if err := bus.WriteHistory(chatID, userID, assembled, response); err != nil {
		if errDbusIs(err, daemon.ErrNameHistoryNotEnabled) {
			logging.Log.Warnf("client: history is disabled in the configuration file; skipping the write to history")
		} else {
			logging.Log.Warnf("client: failed to write history: %v", err)
		}
	}

	displayResponse(render, response)
	return nil
}

// getOrCreateChat resolves name to a chat id, creating it if it doesn't
// exist yet, mirroring _create_chat_session's swallow-ChatNotFound
// pattern.
func getOrCreateChat(bus *BusClient, userID, name, description string) (string, error) {
	id, err := bus.GetChatId(userID, name)
	if err == nil {
		return id, nil
	}
	if !errDbusIs(err, daemon.ErrNameChatNotFound) {
		return "", err
	}
	return bus.CreateChat(userID, name, description)
}

func validateQueryComposition(query, stdin string) error {
	if query != "" && len(strings.TrimSpace(query)) <= 1 {
		return fmt.Errorf("your query needs to have at least 2 characters")
	}
	if stdin != "" && len(strings.TrimSpace(stdin)) <= 1 {
		return fmt.Errorf("your stdin input needs to have at least 2 characters")
	}
	if chatHasOutput {
		if _, err := os.Stat(capture.LogFilePath()); err != nil {
			return fmt.Errorf("adding context from terminal output is only allowed if terminal capture is active")
		}
	}
	return nil
}

func readStdin() string {
	info, err := os.Stdin.Stat()
	if err != nil || (info.Mode()&os.ModeCharDevice) != 0 {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readAttachment(path string) (contents, mimetype string, err error) {
	if path == "" {
		return "", "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read attachment %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), guessMimetype(path), nil
}

func readTerminalOutput(index int) string {
	records := capture.ParseTerminalOutput()
	if len(records) == 0 {
		return ""
	}
	return capture.FindOutputByIndex(-abs(index), records)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func errDbusIs(err error, name string) bool {
	var be *busError
	if !errors.As(err, &be) {
		return false
	}
	return be.name == name
}
