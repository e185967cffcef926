package generation

import (
	"fmt"
	"strings"
)

const maxEchoedPrompt = 200

// Fallback builds the local response used when the remote call fails. It
// depends only on the action and the prompt, and is always prose with a
// non-empty body.
func Fallback(action Action, prompt string, reason ErrorKind) Response {
	topic := echo(prompt)
	var b strings.Builder
	switch action {
	case ActionQuiz:
		fmt.Fprintf(&b, "# Quiz : %s\n\n", topic)
		b.WriteString("Le service de génération est indisponible, le quiz n'a pas pu être créé.\n\n")
		b.WriteString("En attendant, testez-vous avec ces questions :\n\n")
		fmt.Fprintf(&b, "1. Quelle est la notion centrale de **%s** ?\n", topic)
		b.WriteString("2. Citez un exemple concret où elle s'applique.\n")
		b.WriteString("3. Quelle erreur fréquente faut-il éviter ?\n")
	case ActionMindmap:
		fmt.Fprintf(&b, "# Carte mentale : %s\n\n", topic)
		b.WriteString("Le service de génération est indisponible, la carte n'a pas pu être créée.\n\n")
		b.WriteString("Structure suggérée :\n\n")
		fmt.Fprintf(&b, "- **%s**\n", topic)
		b.WriteString("- Concepts clés\n")
		b.WriteString("- Exemples\n")
		b.WriteString("- Pièges courants\n")
	default:
		fmt.Fprintf(&b, "# Résumé : %s\n\n", topic)
		b.WriteString("Le service de génération est indisponible, voici un résumé local.\n\n")
		fmt.Fprintf(&b, "## Points clés\n\n- Sujet demandé : *%s*\n", topic)
		b.WriteString("- Relisez les séances associées dans le catalogue.\n")
		b.WriteString("- Réessayez la génération dans quelques instants.\n")
	}
	return Response{
		Kind:   KindProse,
		Body:   b.String(),
		Source: SourceFallback,
		Reason: reason,
	}
}

func echo(prompt string) string {
	p := strings.Join(strings.Fields(prompt), " ")
	if p == "" {
		return "votre demande"
	}
	if r := []rune(p); len(r) > maxEchoedPrompt {
		p = string(r[:maxEchoedPrompt]) + "…"
	}
	return p
}
