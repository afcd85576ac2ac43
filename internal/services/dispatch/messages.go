package dispatch

// Replies shown to the member who used a panel
const (
	msgForbidden      = "❌ Seuls les utilisateurs avec la permission '%s' peuvent utiliser ce bouton."
	msgInternal       = "❌ Une erreur est survenue, réessayez plus tard."
	msgPanelRecreated = "✅ Panneau recréé."
	msgPanelFailed    = "❌ Impossible de recréer le panneau."

	msgEpicRequired  = "⚠️ Le pseudo Epic Games est requis."
	msgTwitchUnknown = "❌ Pseudo Twitch '%s' introuvable."

	msgInvalidCode   = "⚠️ Le nom de la partie est invalide."
	msgGameActive    = "❌ Une partie avec le code `%s` est déjà active."
	msgGameExists    = "❌ Le code `%s` a déjà été utilisé pour une partie."
	msgNoModes       = "❌ Aucun mode de jeu n'a de salon d'annonce configuré."
	msgGameNotActive = "❌ La partie `%s` n'est pas active."
	msgGameEnded     = "✅ La partie `%s` est terminée et le résultat a été annoncé."

	msgMemberNotFound    = "❌ Membre introuvable."
	msgSelfSanction      = "❌ Vous ne pouvez pas vous sanctionner vous-même."
	msgProtectedMember   = "❌ Vous ne pouvez pas sanctionner un administrateur."
	msgAlreadySanctioned = "ℹ️ %s a déjà une sanction active."
	msgSanctioned        = "🔨 %s a été sanctionné pour %d minutes."
	msgNoSanction        = "ℹ️ %s n'a pas de sanction active."
	msgSanctionLifted    = "🕊️ La sanction de %s a été levée."

	msgInvalidMember  = "❌ Membre invalide ou bot."
	msgCreatorGranted = "✅ %s est maintenant un créateur de parties."
	msgCreatorRevoked = "➖ %s n'est plus un créateur de parties."
)
