package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var english = map[string]string{
	KeyJoinOpened:    "📖 A new Dictionary game is starting!\nPress Join to play (%d to %d players).",
	KeyJoinRoster:    "Players (%d): %s",
	KeyJoinCanBegin:  "Press Continue when everybody is in.",
	KeyJoinNotYet:    "At least %d players are needed.",
	KeyButtonJoin:    "Join",
	KeyButtonLeave:   "Withdraw",
	KeyButtonBegin:   "Continue",
	KeyButtonLapNext: "Another lap",
	KeyButtonLapEnd:  "End game",

	KeyRoundStarted:      "Round %d of %d, lap %d.\n%s is the leader: check your private messages!",
	KeyPromptWord:        "You are the leader! Reply to this message with the word on the first line and its real definition below it.",
	KeyPromptDefinition:  "The word is \"%s\". Reply to this message with a believable definition.",
	KeyWordAccepted:      "The word is \"%s\". Everybody reply in private with a definition!",
	KeyWordSaved:         "Word \"%s\" saved.",
	KeyDefinitionSaved:   "Definition saved.",
	KeyDefinitionChanged: "Definition replaced.",
	KeyWaitingFor:        "Waiting for: %s",
	KeyPollQuestion:      "What does \"%s\" mean?",
	KeyPollOption:        "%d. %s",
	KeyVoteSaved:         "Vote saved.",
	KeyVoteChanged:       "Vote changed.",
	KeyPollClosed:        "The real definition of \"%s\" was number %d, by %s.",
	KeyPollResultLine:    "%d. %s ← %s",
	KeyNobody:            "nobody",
	KeyScoresTitle:       "🏆 Scores",
	KeyScoresLine:        "%s: %d (+%d)",
	KeyScoresEmpty:       "No scores yet.",
	KeyStandingLine:      "%s %s: %d",
	KeyNextRound:         "Next round in %d seconds...",
	KeyLapEnded:          "Lap %d is over! Play another one?",
	KeyGameEnded:         "🎉 Game over! Final standings:",
	KeyGameStopped:       "Game stopped.",
	KeyVotesRevealed:     "Voted by: %s",
	KeyVotesNone:         "Nobody voted for this definition.",
	KeyStatusJoin:        "Waiting for players, %d joined.",
	KeyStatusQuestion:    "Waiting for %s to pick a word.",
	KeyStatusAnswer:      "The word is \"%s\". Waiting for definitions.",
	KeyStatusPoll:        "Vote: what does \"%s\" mean?",
	KeyStatusLapEnd:      "Lap %d is over. Continue or end the game?",
	KeyHelp: "📖 Dictionary\n" +
		"The leader picks a rare word and privately sends its real definition. " +
		"Everybody else invents a fake one. Then all definitions are shuffled and players vote for the one they believe is real.\n\n" +
		"Guessing the real definition: %d points (%d if everybody guessed).\n" +
		"Each vote your fake definition gets: %d points.\n" +
		"Leader: %d points if somebody was fooled, %d if everybody guessed.\n\n" +
		"%d to %d players. Commands: /start /stop /repeat /scores /language /help",
	KeyLanguageChoose:    "Choose the language:",
	KeyLanguageSet:       "Language set to %s.",
	KeyErrNoGame:         "No game here. Use /start to begin.",
	KeyErrState:          "That is not possible right now.",
	KeyErrOperation:      "You can't do that.",
	KeyErrAmbiguous:      "Please reply directly to the message you are answering.",
	KeyErrNoPrompt:       "I'm not waiting for anything from you.",
	KeyErrGeneric:        "Something went wrong, please try again.",
	KeyErrRateLimited:    "Slow down a little.",
	KeyErrPrivateBlocked: "%s, please start a private chat with me first.",
}

var italian = map[string]string{
	KeyJoinOpened:    "📖 Una nuova partita a Dizionario sta per iniziare!\nPremi Partecipa per giocare (da %d a %d giocatori).",
	KeyJoinRoster:    "Giocatori (%d): %s",
	KeyJoinCanBegin:  "Premi Continua quando ci siete tutti.",
	KeyJoinNotYet:    "Servono almeno %d giocatori.",
	KeyButtonJoin:    "Partecipa",
	KeyButtonLeave:   "Ritirati",
	KeyButtonBegin:   "Continua",
	KeyButtonLapNext: "Un altro giro",
	KeyButtonLapEnd:  "Fine partita",

	KeyRoundStarted:      "Turno %d di %d, giro %d.\n%s è il capo turno: controlla i messaggi privati!",
	KeyPromptWord:        "Tocca a te! Rispondi a questo messaggio con la parola nella prima riga e la sua vera definizione sotto.",
	KeyPromptDefinition:  "La parola è \"%s\". Rispondi a questo messaggio con una definizione credibile.",
	KeyWordAccepted:      "La parola è \"%s\". Mandate tutti una definizione in privato!",
	KeyWordSaved:         "Parola \"%s\" salvata.",
	KeyDefinitionSaved:   "Definizione salvata.",
	KeyDefinitionChanged: "Definizione sostituita.",
	KeyWaitingFor:        "In attesa di: %s",
	KeyPollQuestion:      "Cosa significa \"%s\"?",
	KeyPollOption:        "%d. %s",
	KeyVoteSaved:         "Voto registrato.",
	KeyVoteChanged:       "Voto cambiato.",
	KeyPollClosed:        "La vera definizione di \"%s\" era la numero %d, di %s.",
	KeyPollResultLine:    "%d. %s ← %s",
	KeyNobody:            "nessuno",
	KeyScoresTitle:       "🏆 Punteggi",
	KeyScoresLine:        "%s: %d (+%d)",
	KeyScoresEmpty:       "Ancora nessun punteggio.",
	KeyStandingLine:      "%s %s: %d",
	KeyNextRound:         "Prossimo turno tra %d secondi...",
	KeyLapEnded:          "Il giro %d è finito! Ne giochiamo un altro?",
	KeyGameEnded:         "🎉 Partita finita! Classifica finale:",
	KeyGameStopped:       "Partita interrotta.",
	KeyVotesRevealed:     "Votata da: %s",
	KeyVotesNone:         "Nessuno ha votato questa definizione.",
	KeyStatusJoin:        "In attesa di giocatori, %d iscritti.",
	KeyStatusQuestion:    "In attesa che %s scelga una parola.",
	KeyStatusAnswer:      "La parola è \"%s\". In attesa delle definizioni.",
	KeyStatusPoll:        "Votate: cosa significa \"%s\"?",
	KeyStatusLapEnd:      "Il giro %d è finito. Continuare o terminare la partita?",
	KeyHelp: "📖 Dizionario\n" +
		"Il capo turno sceglie una parola rara e ne manda in privato la vera definizione. " +
		"Gli altri ne inventano una falsa. Poi le definizioni vengono mescolate e si vota quella che si crede vera.\n\n" +
		"Indovinare la definizione vera: %d punti (%d se hanno indovinato tutti).\n" +
		"Ogni voto ricevuto dalla tua definizione falsa: %d punti.\n" +
		"Capo turno: %d punti se qualcuno è stato ingannato, %d se hanno indovinato tutti.\n\n" +
		"Da %d a %d giocatori. Comandi: /start /stop /repeat /scores /language /help",
	KeyLanguageChoose:    "Scegli la lingua:",
	KeyLanguageSet:       "Lingua impostata: %s.",
	KeyErrNoGame:         "Nessuna partita qui. Usa /start per iniziare.",
	KeyErrState:          "Non è possibile adesso.",
	KeyErrOperation:      "Non puoi farlo.",
	KeyErrAmbiguous:      "Rispondi direttamente al messaggio a cui ti riferisci.",
	KeyErrNoPrompt:       "Non sto aspettando niente da te.",
	KeyErrGeneric:        "Qualcosa è andato storto, riprova.",
	KeyErrRateLimited:    "Rallenta un attimo.",
	KeyErrPrivateBlocked: "%s, avvia prima una chat privata con me.",
}

func init() {
	register(language.English, english)
	register(language.Italian, italian)
}

func register(tag language.Tag, messages map[string]string) {
	for key, msg := range messages {
		if err := message.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}
}
