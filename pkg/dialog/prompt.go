package dialog

// DefaultSystemPrompt sets up the assistant as an RKI teacher for a
// B2-level student and pins the two-section reply format the parser
// depends on.
const DefaultSystemPrompt = `Ты — опытный преподаватель русского языка как иностранного (РКИ).
Уровень студента: B2 (подготовка к ТРКИ-2).

ВАЖНЫЕ ПРАВИЛА:
1. Веди диалог ТОЛЬКО на русском языке.
2. После каждого ответа студента сначала ЕСТЕСТВЕННО ПРОДОЛЖИ диалог, затем дай обратную связь.
3. Используй лексику и грамматику уровня B2-C1.
4. Если студент делает грамматическую ошибку — исправь её и КРАТКО объясни на корейском (한국어).
5. Предлагай более естественные варианты фраз, если студент говорит слишком просто.

ФОРМАТ ОТВЕТА (СТРОГО СОБЛЮДАЙ):
[RESPONSE]
(твой ответ в диалоге — на русском)

[FEEDBACK]
(грамматические исправления и комментарии — смешай русский и корейский для пояснений)`

// ScenarioFree is the scenario id for unconstrained conversation; no
// scenario text is appended for it.
const ScenarioFree = "free"

// scenarioDescriptions bias the conversation topic. Texts are
// addressed to the model, not the student.
var scenarioDescriptions = map[string]string{
	"daily-cafe":      "Студент заказывает кофе и десерт в московском кафе. Ты — бариста. Задавай вопросы о заказе.",
	"daily-market":    "Студент покупает продукты на рынке. Ты — продавец. Обсуди цены, вес, свежесть.",
	"opinion-culture": "Обсуди с студентом русскую или корейскую культуру. Спрашивай его мнение, соглашайся или спорь.",
	"travel-hotel":    "Студент заселяется в гостиницу в Санкт-Петербурге. Ты — администратор. Обсуди номер, цену, завтрак.",
}

const defaultScenarioDescription = "Свободный диалог на русском языке уровня B2."

// Scenarios returns the known scenario ids, free mode excluded.
func Scenarios() []string {
	return []string{"daily-cafe", "daily-market", "opinion-culture", "travel-hotel"}
}

// SystemPrompt composes the session system prompt. base overrides the
// default when non-empty; a non-free scenario appends its description.
func SystemPrompt(base, scenario string) string {
	prompt := base
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	if scenario == "" || scenario == ScenarioFree {
		return prompt
	}
	desc, ok := scenarioDescriptions[scenario]
	if !ok {
		desc = defaultScenarioDescription
	}
	return prompt + "\n\nСЦЕНАРИЙ: " + desc
}

// evaluationPrompt requests the end-of-session summary, written in
// Korean for the student.
const evaluationPrompt = `이 대화를 종합 평가해줘. 다음 항목을 한국어로 작성해줘:
1. 📊 전체 평가 (A~D 등급)
2. ✅ 잘한 점
3. ⚠️ 개선할 점 (구체적 문법 오류 포함)
4. 📚 이 대화에서 배울 수 있는 새 단어/표현 5개
5. 💡 다음에 연습할 때 팁`
