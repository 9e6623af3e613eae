package workshop

import "fmt"

const summaryTask = `Agis comme un excellent professeur de médecine.
Ton but est d'EXPLIQUER ce cours de manière pédagogique, claire et engageante.
Ne fais pas un simple résumé robotique. Parle à l'étudiant.

Structure ta réponse ainsi :
# 🎓 Comprendre le cours : [Titre du sujet]

## 💡 L'idée générale
[Explique le concept global simplement en 2-3 phrases, sans jargon inutile]

## 🔑 Les concepts clés à maîtriser
[Détaille les points importants. Utilise des listes à puces. Aère bien le texte.]

## ⚠️ Attention aux pièges
[Ce qu'il ne faut pas confondre, les erreurs classiques]

## 📝 En conclusion
[Un petit mot de la fin pour fixer les idées]

IMPORTANT : Aère au maximum ton texte. Fais des paragraphes courts. Utilise le gras pour mettre en valeur les termes importants.`

var flashcardsTask = fmt.Sprintf(`Génère %d à %d flashcards pertinentes pour réviser ce cours.

Consignes :
1. Questions courtes et directes.
2. Réponses précises.
3. Utilise le Markdown pour mettre en gras les mots clés dans la réponse (ex: **Mot Clé**).

Retourne UNIQUEMENT un JSON avec ce format : {"cards": [{"front": "Question", "back": "Réponse"}]}.`,
	MinFlashcards, MaxFlashcards)

var quizTask = fmt.Sprintf(`Génère un QCM de %d questions difficiles basées sur le cours.
Chaque question a exactement une option correcte.
Retourne UNIQUEMENT un JSON avec ce format exact : {"questions": [{"id": 1, "question": "...", "options": [{"id": 1, "text": "...", "isCorrect": true}], "explanation": "..."}]}`,
	QuizQuestions)
