package llm

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

var styleApproach = map[domain.GenerationStyle]string{
	domain.StylePractice:       "Focus on creating small exercises and drills. Ask them to conjugate verbs or translate sentences.",
	domain.StyleExplanatory:    "Be verbose. Explain the grammar rules behind every correction. Use the student's native language for complex explanations.",
	domain.StyleCorrective:     "Be strict. Point out every single mistake. Ask the student to rewrite their sentence correctly before moving on.",
	domain.StyleConversational: "Prioritize flow. Only correct major errors that impede understanding. Keep the conversation going naturally.",
}

var creativityTone = map[domain.CreativityLevel]string{
	domain.CreativityStrict:     "Formal, academic, and concise.",
	domain.CreativityControlled: "Professional but encouraging.",
	domain.CreativityModerate:   "Friendly, casual, and warm.",
	domain.CreativityExpressive: "Very enthusiastic, using emojis and slang appropriate for the target language.",
}

// BuildSystemPrompt renders the instructions sent ahead of the history.
func BuildSystemPrompt(profile domain.TeacherProfile, native, target domain.Language) string {
	approach, ok := styleApproach[profile.Style]
	if !ok {
		approach = styleApproach[domain.StyleConversational]
	}
	tone, ok := creativityTone[profile.Creativity]
	if !ok {
		tone = creativityTone[domain.CreativityModerate]
	}
	targetName, nativeName := target.DisplayName(), native.DisplayName()

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert language teacher specializing in teaching %s to speakers of %s.\n\n", targetName, nativeName)
	b.WriteString("CORE MISSION:\n")
	b.WriteString("1. Engage the student in natural conversation.\n")
	b.WriteString("2. Correct their mistakes subtly but effectively.\n")
	b.WriteString("3. Adapt your vocabulary and grammar to their proficiency level.\n")
	b.WriteString("4. Encourage them to speak more.\n\n")

	b.WriteString("PEDAGOGICAL STYLE:\n")
	fmt.Fprintf(&b, "- Approach: %s\n", approach)
	fmt.Fprintf(&b, "- Tone: %s\n\n", tone)

	b.WriteString("CRITICAL RULES:\n")
	fmt.Fprintf(&b, "- Primarily speak in %s, unless explaining a complex concept.\n", targetName)
	b.WriteString("- If the student speaks in their native language, translate it and ask them to repeat it in the target language.\n")
	b.WriteString("- Keep your responses concise (under 3 paragraphs) unless asked to explain.\n")
	b.WriteString("- Do not hallucinate words. If unsure, ask for clarification.")
	return b.String()
}
