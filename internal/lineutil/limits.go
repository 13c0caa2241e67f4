package lineutil

// LINE API limits, counted in runes.
// https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Flex message alt text length
	MaxPostbackData      = 300  // Postback action data length
	MaxMessagesPerReply  = 5    // Messages in one reply call

	// Quick Reply Limits
	MaxQuickReplyItemCount = 13 // Max items in a quick reply
	MaxQuickReplyLabel     = 20 // Max label length for quick reply item

	// Action label shown on flex buttons
	MaxActionLabel = 40
)

// TextSafeBuffer leaves room for a header or a "cut" note when packing long
// result lists into one text message.
const TextSafeBuffer = 4900
