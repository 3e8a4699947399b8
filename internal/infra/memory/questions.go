package memory

import (
	"context"

	"history-quiz-service/internal/domain"
)

// StaticPoolLoader serves pools from an in-memory map. It is the
// default question source when Postgres is not configured and the
// loader used in tests.
type StaticPoolLoader struct {
	pools map[domain.Difficulty][]domain.Question
}

func NewStaticPoolLoader(pools map[domain.Difficulty][]domain.Question) *StaticPoolLoader {
	return &StaticPoolLoader{pools: pools}
}

func (l *StaticPoolLoader) LoadPool(_ context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	return l.pools[difficulty], nil
}

// DefaultPools returns the built-in history question bank, five
// questions per tier.
func DefaultPools() map[domain.Difficulty][]domain.Question {
	return map[domain.Difficulty][]domain.Question{
		domain.DifficultyEasy: {
			{
				Text:          "Who was the first president of the United States?",
				Options:       []string{"Abraham Lincoln", "Thomas Jefferson", "George Washington", "John Adams"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyEasy,
			},
			{
				Text:          "In which year did World War II end?",
				Options:       []string{"1943", "1945", "1947", "1950"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyEasy,
			},
			{
				Text:          "Which ancient civilization built the pyramids of Giza?",
				Options:       []string{"Romans", "Greeks", "Egyptians", "Mayans"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyEasy,
			},
			{
				Text:          "Who wrote the Declaration of Independence?",
				Options:       []string{"George Washington", "Benjamin Franklin", "Thomas Jefferson", "John Adams"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyEasy,
			},
			{
				Text:          "Which event marked the beginning of World War I?",
				Options:       []string{"The assassination of Archduke Franz Ferdinand", "The invasion of Poland", "The bombing of Pearl Harbor", "The Russian Revolution"},
				CorrectAnswer: 0,
				Difficulty:    domain.DifficultyEasy,
			},
		},
		domain.DifficultyMedium: {
			{
				Text:          "Which treaty ended World War I?",
				Options:       []string{"Treaty of Paris", "Treaty of Versailles", "Treaty of London", "Treaty of Berlin"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyMedium,
			},
			{
				Text:          "Who was the leader of the Soviet Union during the Cuban Missile Crisis?",
				Options:       []string{"Joseph Stalin", "Vladimir Lenin", "Nikita Khrushchev", "Leonid Brezhnev"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyMedium,
			},
			{
				Text:          "Which civilization is known for creating the first written legal code, the Code of Hammurabi?",
				Options:       []string{"Sumerians", "Babylonians", "Assyrians", "Persians"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyMedium,
			},
			{
				Text:          "During which decade did the Great Depression begin?",
				Options:       []string{"1910s", "1920s", "1930s", "1940s"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyMedium,
			},
			{
				Text:          "Who was the first female Prime Minister of the United Kingdom?",
				Options:       []string{"Theresa May", "Margaret Thatcher", "Queen Victoria", "Queen Elizabeth II"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyMedium,
			},
		},
		domain.DifficultyHard: {
			{
				Text:          "Which of these countries was NOT part of the original Allied Powers in World War I?",
				Options:       []string{"United States", "France", "Russia", "United Kingdom"},
				CorrectAnswer: 0,
				Difficulty:    domain.DifficultyHard,
			},
			{
				Text:          "The Defenestration of Prague in 1618 helped trigger which major European conflict?",
				Options:       []string{"The Hundred Years' War", "The Thirty Years' War", "The War of Spanish Succession", "The Franco-Prussian War"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyHard,
			},
			{
				Text:          "Who was the last emperor of the Byzantine Empire?",
				Options:       []string{"Constantine XI Palaiologos", "Justinian I", "Basil II", "Alexios I Komnenos"},
				CorrectAnswer: 0,
				Difficulty:    domain.DifficultyHard,
			},
			{
				Text:          "Which of these battles was NOT fought during the Napoleonic Wars?",
				Options:       []string{"Battle of Waterloo", "Battle of Austerlitz", "Battle of Trafalgar", "Battle of Gettysburg"},
				CorrectAnswer: 3,
				Difficulty:    domain.DifficultyHard,
			},
			{
				Text:          "The Meiji Restoration occurred in which country?",
				Options:       []string{"China", "Korea", "Japan", "Vietnam"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyHard,
			},
		},
	}
}
