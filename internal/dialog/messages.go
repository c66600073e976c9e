package dialog

const (
	MsgUnauthorized    = "You are not authorized to use this bot."
	MsgStarted         = "Mitek is up. Mitek is rolling."
	MsgAlreadyRunning  = "Mitek is already running."
	MsgStopped         = "Mitek stopped."
	MsgNotRunning      = "Mitek was not running."
	MsgCancelled       = "Operation cancelled."
	MsgExpired         = "That choice has expired."
	MsgUnknownCategory = "Unknown list. Use 'filler' or 'quotes'."

	MsgAddPrompt     = "Send the phrase to add."
	MsgAddUsage      = "Usage: /add_phrase <list> <phrase>"
	MsgChooseAdd     = "Add the phrase to which list?"
	MsgAdded         = "Added to %s: %q"
	MsgChooseDelete  = "Delete the most recent phrase from which list?"
	MsgDeleted       = "Deleted from %s: %q"
	MsgNothingDelete = "Nothing to delete in %s."

	MsgIntervalPrompt     = "Send the interval in seconds as: <min> <max>"
	MsgIntervalInvalid    = "The interval needs min > 0, max >= min and max <= 2592000 (30 days). Send: <min> <max>"
	MsgIntervalNotNumbers = "Numbers only. Send: <min> <max>"
	MsgIntervalSet        = "Interval set to %d - %d seconds."

	MsgWeightsPrompt     = "Send the weights for reply, quote and media as: <reply> <quote> <media>"
	MsgWeightsInvalid    = "Weights must be non-negative and sum to 1. Send: <reply> <quote> <media>"
	MsgWeightsNotNumbers = "Send the weights as: <reply> <quote> <media>"
	MsgWeightsSet        = "Weights set to reply: %g, quote: %g, media: %g"

	DefaultIntro = "Hello there! I'm Mitek, a lifelike model released from the lab computer into the wide world. " +
		"First this chat, then dinner, then, carefully, the rest of humanity."
)
