package bot

// Reply texts.
const (
	msgHelp = "Привет! 📊\n\n" +
		"Отправь мне шаблон встречи и я буду считать статистику.\n\n" +
		"Для офферов:\nМой вопрос: кк нс инвест\n\n" +
		"Для переносов:\nМой вопрос: перенос недозвон клиент не ответил\n\n" +
		"Для комментариев:\nМой вопрос: комментарий клиент просил перезвонить\n\n" +
		"Команды:\n" +
		"/offers - статистика продаж\n" +
		"/rescheduling - статистика переносов\n" +
		"/meetings - встречи с комментариями\n" +
		"/modify - получить модифицированный текст встречи\n" +
		"/reset - очистить данные"

	msgUnknown        = "Не понял команду. Используй /start для справки."
	msgNoTrigger      = "❌ Не могу найти 'Мой вопрос:' в сообщении"
	msgNoOffers       = "❌ Не найдено офферов после 'Мой вопрос:'"
	msgSaveFailed     = "❌ Ошибка при обработке встречи: "
	msgSaveFallback   = "не удалось сохранить встречу, попробуйте позже"
	msgStatsFailed    = "❌ Не удалось получить статистику, попробуйте позже"
	msgResetDone      = "✅ Вся ваша статистика очищена!"
	msgResetFailed    = "❌ Не удалось очистить статистику, попробуйте позже"
	msgSavedOffers    = "✅ Встреча сохранена!\n\nНайденные офферы:\n"
	msgSavedResched   = "📅 Перенос зафиксирован!\n\n"
	msgSavedComment   = "💬 Комментарий сохранен!\n\n"
	msgModified       = "📝 Модифицированный текст встречи:\n\n"
	msgModifyFailed   = "❌ Ошибка при получении модифицированного текста"
	msgModifyCanceled = "✅ Режим модификации отменен. Используйте /start для справки."
	msgModifyPrompt   = "🔍 Поиск встреч по ID активности:\n\n" +
		"Отправьте ID активности или текст встречи с 'Мой вопрос:' для получения модифицированного текста\n\n" +
		"Пример: aOBv7DDXE4AqEPC8jHAqcA\n\n" +
		"❌ Для выхода отправьте /cancel"
	msgModifyBadInput = "❌ Неверный формат ввода.\n\n" +
		"🔍 Для поиска по ID отправьте ID активности (например: aOBv7DDXE4AqEPC8jHAqcA)\n\n" +
		"❌ Для выхода отправьте /cancel"
	msgActivityMissing = "❌ Встреча с ID %s не найдена"
)
