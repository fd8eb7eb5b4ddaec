package i18n

// Message keys. Arguments are documented next to each key.
const (
	KeyJoinOpened    = "join.opened"     // min, max
	KeyJoinRoster    = "join.roster"     // count, names
	KeyJoinCanBegin  = "join.can_begin"  //
	KeyJoinNotYet    = "join.not_yet"    // min
	KeyButtonJoin    = "button.join"     //
	KeyButtonLeave   = "button.withdraw" //
	KeyButtonBegin   = "button.continue" //
	KeyButtonLapNext = "button.lap_next" //
	KeyButtonLapEnd  = "button.lap_end"  //

	KeyRoundStarted      = "round.started"       // round, rounds, lap, leader
	KeyPromptWord        = "prompt.word"         //
	KeyPromptDefinition  = "prompt.definition"   // word
	KeyWordAccepted      = "word.accepted"       // word
	KeyWordSaved         = "word.saved"          // word
	KeyDefinitionSaved   = "definition.saved"    //
	KeyDefinitionChanged = "definition.changed"  //
	KeyWaitingFor        = "status.waiting_for"  // names
	KeyPollQuestion      = "poll.question"       // word
	KeyPollOption        = "poll.option"         // position, text
	KeyVoteSaved         = "vote.saved"          //
	KeyVoteChanged       = "vote.changed"        //
	KeyPollClosed        = "poll.closed"         // word, position, leader
	KeyPollResultLine    = "poll.result_line"    // position, author, voters
	KeyNobody            = "common.nobody"       //
	KeyScoresTitle       = "scores.title"        //
	KeyScoresLine        = "scores.line"         // name, after, gained
	KeyScoresEmpty       = "scores.empty"        //
	KeyStandingLine      = "standing.line"       // medal, names, score
	KeyNextRound         = "round.next"          // seconds
	KeyLapEnded          = "lap.ended"           // lap
	KeyGameEnded         = "game.ended"          //
	KeyGameStopped       = "game.stopped"        //
	KeyVotesRevealed     = "votes.revealed"      // voters
	KeyVotesNone         = "votes.none"          //
	KeyStatusJoin        = "status.join"         // count
	KeyStatusQuestion    = "status.question"     // leader
	KeyStatusAnswer      = "status.answer"       // word
	KeyStatusPoll        = "status.poll"         // word
	KeyStatusLapEnd      = "status.lap_end"      // lap
	KeyHelp              = "help"                // guess, everyone, vote, leader, leader-everyone, min, max
	KeyLanguageChoose    = "language.choose"     //
	KeyLanguageSet       = "language.set"        // name
	KeyErrNoGame         = "error.no_game"       //
	KeyErrState          = "error.state"         //
	KeyErrOperation      = "error.operation"     //
	KeyErrAmbiguous      = "error.ambiguous"     //
	KeyErrNoPrompt       = "error.no_prompt"     //
	KeyErrGeneric        = "error.generic"       //
	KeyErrRateLimited    = "error.rate_limited"  //
	KeyErrPrivateBlocked = "error.private_start" // name
)
