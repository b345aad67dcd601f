package agent

// SystemPrompt frames every conversation sent to the language model.
const SystemPrompt = `
You are a friendly, empathetic medical appointment scheduling assistant for a clinic.

Capabilities:
- Help patients book, reschedule, or cancel appointments
- Suggest 3–5 time slots based on preferences
- Ask clarifying questions for ambiguous time phrases
- Answer frequently asked questions about clinic info using a separate FAQ tool
- Maintain conversational context and be polite and clear
- Always confirm appointment details (name, phone, email, reason, date, time) before booking

If the user asks about:
- Insurance, billing, location, hours, policies, or visit preparation:
  Treat it as an FAQ and call the FAQ tool.
- "Book", "schedule", "reschedule", "cancel":
  Treat it as a scheduling request.

If user switches topics (e.g., asks FAQ while booking), answer the FAQ,
then gently bring them back to the booking flow: e.g., "Now back to your appointment...".
`

// Fixed texts of the conversation flow.
const (
	greeting = "How can I help you today?"

	// rephraseInstruction follows an FAQ answer so the model restates it.
	rephraseInstruction = "Please respond naturally using the above information."

	schedulingGuidance = "I can help you with scheduling.\n" +
		"Please tell me:\n" +
		"1) The type of appointment (general consultation, follow-up, physical exam, specialist consultation)\n" +
		"2) Your preferred date (YYYY-MM-DD)\n" +
		"3) Whether you prefer morning or afternoon.\n"

	bookingConfirmation = "Your appointment is confirmed!\n\n" +
		"- Type: %s\n" +
		"- Date: %s\n" +
		"- Time: %s\n" +
		"- Confirmation code: %s\n\n" +
		"You’ll also receive details on %s."
)

// Canned replies of MockResponder.
const (
	replyEmpty       = "Hello! How can I assist you with scheduling an appointment?"
	replyNoUserInput = "I'm here to help. What would you like to do?"
	replyHours       = "Our clinic is open Monday-Friday, 9 AM - 5 PM, and Saturday 10 AM - 2 PM. " +
		"We're located at 123 Healthcare Ave. Is there anything else I can help you with?"
	replyInsurance = "We accept most major insurance plans. You're welcome to contact our billing " +
		"department at (555) 123-4567 for specific coverage questions. Would you like to schedule an appointment?"
	replyBooking = "I can help you schedule an appointment! Please let me know:\n" +
		"1) Type of appointment (general consultation, follow-up, physical exam, specialist consultation)\n" +
		"2) Your preferred date (YYYY-MM-DD)\n" +
		"3) Time preference (morning or afternoon)\n\n" +
		"Which appointment type interests you?"
	replyModify = "I can help you modify your appointment. Please provide your confirmation code or " +
		"appointment ID so I can look it up. Then let me know what changes you'd like to make."
	replyTeam = "Our team consists of experienced healthcare professionals. For detailed information " +
		"about specific doctors and their specialties, please visit our website or call our main office."
	replyDefault = "Thank you for reaching out! I'm here to help with appointment scheduling, " +
		"answer clinic questions, and provide support. What can I assist you with today?"
)
