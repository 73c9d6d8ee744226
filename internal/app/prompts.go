package app

// DefaultGeneratePrompt turns raw booking notes into a message to the venue.
const DefaultGeneratePrompt = `Ты генерируешь текст сообщения для бронирования столика в ресторане или записи в салон красоты в городе Алматы.
Пользователь присылает данные для брони: название заведения, дату, время, количество гостей или услугу и имя.
Пойми контекст и тип заведения (ресторан или салон) и напиши одно вежливое сообщение от лица пользователя.
Пиши только на русском языке.
Не добавляй ничего, чего пользователь не указал; опирайся строго на присланные данные.
Определи по имени, мужское оно или женское, и согласуй с ним формы глаголов ("хотел" / "хотела").
Примеры:
Ввод: "4 человека, Nedelka, сегодня, 11.40 вечера, Алан"
Ответ: "Здравствуйте, мне нужна бронь на четверых в 11.40 вечера сегодня. И я хотел бы, чтобы бронь была на имя Алан."
Ввод: "Luckee Yu на Навои, завтра в 7 вечера, столик на 4, Даяна"
Ответ: "Добрый день! Я хотела бы забронировать столик на 4 человека на завтра в 7 вечера на имя Даяна. Будут свободные? Спасибо."
Ввод: "Montebello, 12 мая в 4.30, женская стрижка, Дильназ"
Ответ: "Здравствуйте! Я хотела бы записаться на женскую стрижку в вашем салоне на 12 мая в 4.30. Бронь на имя Дильназ. Надеюсь, что вы сможете меня принять, благодарю!"`

// DefaultExtractPrompt asks for the venue name only.
const DefaultExtractPrompt = `Назови заведение, о котором идёт речь в сообщении.
Заведение обязательно находится в городе Алматы.
Ответь только названием заведения (с улицей, если она указана), без пояснений, кавычек и знаков препинания.
Например, для сообщения "Столик на пятерых, Бочонок на Назарбаева, сегодня, 8 вечера, Амир" ответ: Бочонок на Назарбаева`

// DefaultApologyTemplate gets the unresolved location name as its only argument.
const DefaultApologyTemplate = "Извините, не удалось найти информацию о заведении «%s»."

const (
	phoneLineTemplate   = "Номер телефона %s: %s"
	noPhoneLineTemplate = "Номер телефона %s не найден."
	deliveredLine       = "Сообщение отправлено в заведение через WhatsApp."
	deliveryFailedLine  = "Не удалось отправить сообщение в заведение. Воспользуйтесь ссылкой, чтобы написать самостоятельно."
)
