package customers

// SampleCustomers returns the demo data loaded by the seed command.
func SampleCustomers() []CustomerPayload {
	sample := func(nome, email, telefone, endereco, cep, nascimento string, ativo bool) CustomerPayload {
		cidade, estado := "São Paulo", "SP"
		return CustomerPayload{
			Nome:           &nome,
			Email:          &email,
			Telefone:       &telefone,
			Endereco:       &endereco,
			Cidade:         &cidade,
			Estado:         &estado,
			Cep:            &cep,
			DataNascimento: &nascimento,
			Ativo:          &ativo,
		}
	}

	return []CustomerPayload{
		sample("João Silva", "joao.silva@email.com", "11999999999", "Rua das Flores, 123", "01234567", "1990-05-15", true),
		sample("Maria Santos", "maria.santos@email.com", "11888888888", "Avenida Paulista, 1000", "01310100", "1985-08-22", true),
		sample("Pedro Oliveira", "pedro.oliveira@email.com", "11777777777", "Rua Augusta, 456", "01305000", "1992-12-03", true),
		sample("Ana Costa", "ana.costa@email.com", "11666666666", "Rua Oscar Freire, 789", "01426001", "1988-03-18", true),
		sample("Carlos Ferreira", "carlos.ferreira@email.com", "11555555555", "Rua Haddock Lobo, 321", "01414000", "1995-07-10", false),
	}
}
