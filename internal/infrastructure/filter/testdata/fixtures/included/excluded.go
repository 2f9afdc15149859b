package fixtures

func Answer() int { return 42 }
